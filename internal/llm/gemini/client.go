// Package gemini implements llm.ReceiptParser against the Google Generative
// Language API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string        // falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com/v1
	Model   string        // e.g. "gemini-2.5-flash"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// generateContent request/response shapes, trimmed to what we use.
type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig genConfig    `json:"generationConfig"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature float32 `json:"temperature"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Parse sends the OCR text wrapped in the extraction prompt and returns the
// model's raw text response. Reconciliation handles everything after that.
func (c *Client) Parse(ctx context.Context, ocrText string) (string, error) {
	start := time.Now()
	c.logger.Info("gemini.parse.start", "model", c.cfg.Model, "text_len", len(ocrText))

	text, err := c.generate(ctx, llm.BuildExtractionPrompt(ocrText))
	if err != nil {
		c.logger.Error("gemini.parse.error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("%w: %w", common.ErrUpstream, err)
	}

	c.logger.Info("gemini.parse.ok",
		"response_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// VerifyKey issues a minimal generation to confirm the credential works.
func (c *Client) VerifyKey(ctx context.Context) error {
	_, err := c.generate(ctx, "Hello")
	if err != nil {
		return fmt.Errorf("verify api key: %w", err)
	}
	return nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, url.QueryEscape(c.cfg.APIKey))

	body := genRequest{
		Contents:         []genContent{{Parts: []genPart{{Text: prompt}}}},
		GenerationConfig: genConfig{Temperature: 0},
	}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, nil, c.logger)
	if err != nil {
		return "", err
	}

	var resp genResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
