// Package identity exchanges a long-lived refresh token for short-lived ID
// tokens at the provider's token endpoint. The rest of the system only sees
// the bearer token; sign-in, sign-up and account state live entirely in the
// provider.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const expiryLeeway = time.Minute

type Client struct {
	tokenURL     string
	apiKey       string
	refreshToken string
	httpClient   *http.Client
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewClient(tokenURL, apiKey, refreshToken string) *Client {
	return &Client{
		tokenURL:     tokenURL,
		apiKey:       apiKey,
		refreshToken: refreshToken,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
}

// Token returns a valid bearer token, refreshing it when the cached one is
// within the leeway of its expiry.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(expiryLeeway).Before(c.expires) {
		return c.token, nil
	}

	if err := c.refresh(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    string `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

func (c *Client) refresh(ctx context.Context) error {
	if c.refreshToken == "" {
		return fmt.Errorf("no refresh token configured")
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", c.refreshToken)

	endpoint := c.tokenURL
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("exchanging refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("token endpoint error %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}

	token := tr.IDToken
	if token == "" {
		token = tr.AccessToken
	}
	if token == "" {
		return fmt.Errorf("token endpoint returned no token")
	}

	c.token = token
	c.expires = c.tokenExpiry(token, tr.ExpiresIn)
	if tr.RefreshToken != "" {
		c.refreshToken = tr.RefreshToken
	}
	return nil
}

// tokenExpiry prefers the exp claim embedded in the token itself and falls
// back to the endpoint's expires_in. The token is not verified here; the
// backend does that.
func (c *Client) tokenExpiry(token, expiresIn string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return c.now().Add(time.Duration(secs) * time.Second)
	}
	// Unknown lifetime: force a refresh on the next call.
	return c.now()
}
