package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexiqai/voice-input/internal/resilience"
)

const cartesiaSampleRate = 24000

// CartesiaConfig configures the Cartesia client.
type CartesiaConfig struct {
	APIKey  string
	URL     string
	VoiceID string
	ModelID string
	Retry   resilience.RetryConfig
	Timeout time.Duration
}

// CartesiaClient implements Synthesizer using Cartesia's TTS API.
type CartesiaClient struct {
	cfg        CartesiaConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// CartesiaRequest is the request payload for the Cartesia TTS API.
type CartesiaRequest struct {
	Text         string  `json:"text"`
	VoiceID      string  `json:"voice_id"`
	ModelID      string  `json:"model_id,omitempty"`
	OutputFormat string  `json:"output_format,omitempty"`
	SampleRate   int     `json:"sample_rate,omitempty"`
	Language     string  `json:"language,omitempty"`
	Speed        float64 `json:"speed,omitempty"`
}

// NewCartesiaClient creates a Cartesia client.
func NewCartesiaClient(cfg CartesiaConfig, logger zerolog.Logger) *CartesiaClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CartesiaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "cartesia").Logger(),
	}
}

func (c *CartesiaClient) Name() string { return "cartesia" }

// Synthesize converts text to PCM audio, retrying transient failures.
func (c *CartesiaClient) Synthesize(ctx context.Context, text string) (*AudioChunk, error) {
	if text == "" {
		return nil, errors.New("cartesia: empty text")
	}

	body, err := json.Marshal(CartesiaRequest{
		Text:         text,
		VoiceID:      c.cfg.VoiceID,
		ModelID:      c.cfg.ModelID,
		OutputFormat: "pcm",
		SampleRate:   cartesiaSampleRate,
		Language:     "en",
		Speed:        1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var audio []byte
	err = resilience.Retry(ctx, c.cfg.Retry, c.logger, resilience.IsTransientNetworkError, func(ctx context.Context) error {
		audio, err = c.post(ctx, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("bytes", len(audio)).Msg("synthesized feedback")
	return &AudioChunk{Data: audio, SampleRate: cartesiaSampleRate, Channels: 1}, nil
}

func (c *CartesiaClient) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("cartesia API returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, resilience.NewRetryableError(err)
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cartesia audio: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("cartesia returned empty audio")
	}
	return data, nil
}
