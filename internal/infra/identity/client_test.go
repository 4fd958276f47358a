package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

func TestClient_TokenRefreshAndCache(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	idToken := signedToken(t, now.Add(time.Hour))

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "the-api-key", r.URL.Query().Get("key"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "refresh-1", r.PostForm.Get("refresh_token"))

		json.NewEncoder(w).Encode(map[string]string{
			"id_token":      idToken,
			"expires_in":    "3600",
			"refresh_token": "refresh-2",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "the-api-key", "refresh-1")
	client.now = func() time.Time { return now }

	got, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, idToken, got)
	assert.Equal(t, 1, calls)

	// Second call inside the lifetime hits the cache.
	got, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, idToken, got)
	assert.Equal(t, 1, calls)

	// Within the leeway of expiry, refresh again, using the rotated
	// refresh token.
	now = now.Add(time.Hour - 30*time.Second)
	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "refresh-2", client.refreshToken)
}

func TestClient_ExpiryFromJWTClaim(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	exp := now.Add(45 * time.Minute)

	client := NewClient("http://unused.invalid", "", "r")
	client.now = func() time.Time { return now }

	// The exp claim wins over expires_in.
	got := client.tokenExpiry(signedToken(t, exp), "3600")
	assert.True(t, got.Equal(exp.Truncate(time.Second)))
}

func TestClient_ExpiryFallsBackToExpiresIn(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	client := NewClient("http://unused.invalid", "", "r")
	client.now = func() time.Time { return now }

	got := client.tokenExpiry("not-a-jwt", "3600")
	assert.True(t, got.Equal(now.Add(time.Hour)))

	// Unknown lifetime forces refresh next call.
	got = client.tokenExpiry("not-a-jwt", "")
	assert.True(t, got.Equal(now))
}

func TestClient_NoRefreshToken(t *testing.T) {
	client := NewClient("http://unused.invalid", "", "")
	_, err := client.Token(context.Background())
	require.ErrorContains(t, err, "no refresh token")
}

func TestClient_TokenEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "INVALID_REFRESH_TOKEN"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "bad")
	_, err := client.Token(context.Background())
	require.ErrorContains(t, err, "token endpoint error 400")
}
