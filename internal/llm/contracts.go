package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// StructuredResult is Stage 2 output. Raw is the model reply with surrounding
// whitespace trimmed and nothing else done to it.
type StructuredResult struct {
	Raw        string
	Model      string
	Provider   string
	Inspection Inspection
}

// Structurer is the interface our pipeline depends on.
type Structurer interface {
	Structure(ctx context.Context, text string) (StructuredResult, error)
}

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// NewResult trims the reply and runs Inspect. An empty reply is a remote failure.
func NewResult(provider, model, content string) (StructuredResult, error) {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return StructuredResult{Provider: provider, Model: model}, common.NewRemoteServiceError(provider+" returned empty content", nil)
	}
	return StructuredResult{
		Raw:        raw,
		Model:      model,
		Provider:   provider,
		Inspection: Inspect(raw),
	}, nil
}

// LogResult logs a finished structuring call; inspection findings go out at warn.
func LogResult(logger *slog.Logger, rid string, res StructuredResult, start time.Time) {
	if !res.Inspection.ValidJSON || len(res.Inspection.SchemaIssues) > 0 {
		logger.Warn("llm.structure.inspection",
			"req_id", rid,
			"provider", res.Provider,
			"json_valid", res.Inspection.ValidJSON,
			"schema_issues", fmt.Sprint(res.Inspection.SchemaIssues),
		)
	}
	logger.Info("llm.structure.ok",
		"req_id", rid,
		"provider", res.Provider,
		"model", res.Model,
		"raw_len", len(res.Raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
