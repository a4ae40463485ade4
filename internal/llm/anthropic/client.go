// Package anthropic structures text with the Claude Messages API.
package anthropic

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
)

type Config struct {
	APIKey      string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL     string // empty keeps the SDK default
	Model       string // default claude-sonnet-4-5
	Temperature float32
	MaxTokens   int // default 2048
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	client sdk.Client
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{cfg: cfg, client: sdk.NewClient(opts...), log: logger}
}

// Structure implements llm.Structurer with one Messages.New call.
func (c *Client) Structure(ctx context.Context, text string) (llm.StructuredResult, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.log.Info("llm.structure.start",
		"req_id", rid,
		"provider", llm.ProviderAnthropic,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(llm.BuildUserPrompt(text))),
		},
		System: []sdk.TextBlockParam{
			{Text: llm.BuildSystemPrompt()},
		},
		Temperature: sdk.Float(float64(c.cfg.Temperature)),
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.Error("llm.structure.http_error",
			"req_id", rid, "provider", llm.ProviderAnthropic, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredResult{}, common.NewRemoteServiceError("anthropic request failed", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	res, err := llm.NewResult(llm.ProviderAnthropic, c.cfg.Model, b.String())
	if err != nil {
		return res, err
	}
	llm.LogResult(c.log, rid, res, start)
	return res, nil
}
