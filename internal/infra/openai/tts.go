package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-survey/internal/infra"
)

// TTSSampleRate is the sample rate of raw PCM returned by the speech
// endpoint: 24 kHz, 16-bit, mono.
const TTSSampleRate = 24000

// TTSClient synthesizes prompt audio. Raw PCM output keeps the playback
// path free of container parsing.
type TTSClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	voice      string
	speed      float64
}

func NewTTSClient(apiKey, model, voice string, speed float64) *TTSClient {
	return NewTTSClientWithURL(apiKey, model, voice, speed, "https://api.openai.com/v1")
}

func NewTTSClientWithURL(apiKey, model, voice string, speed float64, baseURL string) *TTSClient {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "nova"
	}
	if speed <= 0 {
		speed = 1.0
	}
	return &TTSClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
		voice:      voice,
		speed:      speed,
	}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
}

// Synthesize converts text to raw 16-bit mono PCM at TTSSampleRate.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	var pcm []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		body, err := json.Marshal(speechRequest{
			Model:          c.model,
			Input:          text,
			Voice:          c.voice,
			ResponseFormat: "pcm",
			Speed:          c.speed,
		})
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			apiErr := fmt.Errorf("speech API error %d: %s", resp.StatusCode, string(respBody))
			if !infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return &infra.PermanentError{Err: apiErr}
			}
			return apiErr
		}

		pcm, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}
	return pcm, nil
}
