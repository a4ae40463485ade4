package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
)

// Structure implements llm.Structurer with one chat/completions call.
func (c *Client) Structure(ctx context.Context, text string) (llm.StructuredResult, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.log.Info("llm.structure.start",
		"req_id", rid,
		"provider", llm.ProviderOpenAI,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(text),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(text)},
		},
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		c.log.Error("llm.structure.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredResult{}, common.NewRemoteServiceError("openai request failed", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.structure.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredResult{}, common.NewRemoteServiceError("decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.structure.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredResult{}, common.NewRemoteServiceError("no choices in openai response", nil)
	}

	res, err := llm.NewResult(llm.ProviderOpenAI, c.cfg.Model, cc.Choices[0].Message.Content)
	if err != nil {
		return res, err
	}
	llm.LogResult(c.log, rid, res, start)
	return res, nil
}
