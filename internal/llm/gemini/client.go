// Package gemini structures text with the Gemini generateContent API.
package gemini

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
)

type Config struct {
	APIKey      string // if empty, falls back to env GEMINI_API_KEY
	BaseURL     string
	Model       string // default gemini-2.5-flash
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	client *genai.Client
	log    *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, common.NewConfigurationError("initialize genai client", err)
	}
	return &Client{cfg: cfg, client: client, log: logger}, nil
}

// Structure implements llm.Structurer with one GenerateContent call.
func (c *Client) Structure(ctx context.Context, text string) (llm.StructuredResult, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.log.Info("llm.structure.start",
		"req_id", rid,
		"provider", llm.ProviderGemini,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	ctx, cancel := common.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(llm.BuildSystemPrompt(), genai.RoleUser),
	}
	if c.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.cfg.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(llm.BuildUserPrompt(text)), config)
	if err != nil {
		c.log.Error("llm.structure.http_error",
			"req_id", rid, "provider", llm.ProviderGemini, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredResult{}, common.NewRemoteServiceError("gemini request failed", err)
	}

	// first candidate with any text wins
	var b strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					b.WriteString(part.Text)
				}
			}
			if b.Len() > 0 {
				break
			}
		}
	}

	res, err := llm.NewResult(llm.ProviderGemini, c.cfg.Model, b.String())
	if err != nil {
		return res, err
	}
	llm.LogResult(c.log, rid, res, start)
	return res, nil
}
