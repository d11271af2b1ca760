// Package audiogen is the HTTP client for the audio-waveform generation
// service (an AudioGen-style inference server holding a fixed 32kHz stereo
// checkpoint loaded once at its own startup).
package audiogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sonara/soundscape/internal/config"
)

type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	duration   float64
}

func New(cfg config.AudioGenConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		duration:   cfg.DurationSec,
	}
}

type generateRequest struct {
	ModelID  string  `json:"model_id,omitempty"`
	Text     string  `json:"text"`
	Duration float64 `json:"duration,omitempty"`
}

// Generate renders one clip for the description and returns the WAV bytes.
func (c *Client) Generate(ctx context.Context, description string) ([]byte, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("audiogen: description is required")
	}

	payload, err := json.Marshal(generateRequest{
		ModelID:  c.model,
		Text:     description,
		Duration: c.duration,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/sound-generation", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("audiogen: backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("audiogen: backend returned empty audio")
	}
	return audio, nil
}

// Health probes the generation backend as a lightweight readiness check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audiogen: health returned %d", resp.StatusCode)
	}
	return nil
}
