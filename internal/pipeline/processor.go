// Package pipeline sequences extraction, structuring and rendering for one upload.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

// Upload is one document as received from the caller.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
	Languages []string
}

// Payload is a pipeline output tagged with the stage that produced it.
type Payload struct {
	Stage   constants.Stage
	Content string
}

type Result struct {
	RequestID  string
	Extracted  Payload
	Structured Payload
	Extraction extract.TextExtractionResult
	Inspection llm.Inspection
	Provider   string
	Model      string
}

// Payload returns the output of the given stage.
func (r *Result) Payload(stage constants.Stage) (Payload, error) {
	switch stage {
	case constants.StageExtractedText:
		return r.Extracted, nil
	case constants.StageStructuredResult:
		return r.Structured, nil
	}
	return Payload{}, fmt.Errorf("%w: unknown stage %q", common.ErrInvalidInput, stage)
}

// Processor coordinates text extraction then LLM structuring.
type Processor struct {
	tempDir    string
	extractor  extract.TextExtractor
	structurer llm.Structurer
	renderer   *render.Renderer
	logger     *slog.Logger
}

func NewProcessor(tempDir string, ex extract.TextExtractor, st llm.Structurer, rd *render.Renderer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if rd == nil {
		rd = render.NewRenderer(render.Config{}, logger)
	}
	return &Processor{tempDir: tempDir, extractor: ex, structurer: st, renderer: rd, logger: logger}
}

// Run extracts then structures one upload. It stops at the first failing
// stage. The request-scoped temp copy is removed on every exit path.
func (p *Processor) Run(ctx context.Context, up Upload) (*Result, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	doc := extract.Document{
		Name:      up.Name,
		MediaType: up.MediaType,
		Data:      up.Data,
		Languages: up.Languages,
	}
	mediaType, _ := extract.ResolveMediaType(doc)
	if constants.MapMediaTypeToFormat(mediaType) == "" {
		p.logger.Warn("pipeline.unsupported", "req_id", rid, "name", up.Name, "media_type", mediaType)
		return nil, common.NewUnsupportedInputError(mediaType)
	}

	path, cleanup, err := p.stage(up.Data, constants.ExtForMediaType(mediaType))
	if err != nil {
		p.logger.Error("pipeline.stage_failed", "req_id", rid, "error", err)
		return nil, err
	}
	defer cleanup()
	doc.Path = path

	// 1) text extraction
	ext, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "req_id", rid, "code", common.CodeOf(err), "error", err)
		return nil, err
	}
	if strings.TrimSpace(ext.Text) == "" {
		p.logger.Warn("pipeline.extract.empty", "req_id", rid, "method", ext.Method, "pages", ext.Pages)
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "document produced no text", common.ErrEmptyText)
	}
	p.logger.Info("pipeline.extract.ok",
		"req_id", rid,
		"method", ext.Method,
		"pages", ext.Pages,
		"text_len", len(ext.Text),
		"elapsed_ms", ext.Duration.Milliseconds(),
	)

	// 2) structuring
	st, err := p.structurer.Structure(ctx, ext.Text)
	if err != nil {
		p.logger.Error("pipeline.structure.failed", "req_id", rid, "code", common.CodeOf(err), "error", err)
		return nil, err
	}

	p.logger.Info("pipeline.run.ok",
		"req_id", rid,
		"json_valid", st.Inspection.ValidJSON,
		"schema_issues", len(st.Inspection.SchemaIssues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		RequestID:  rid,
		Extracted:  Payload{Stage: constants.StageExtractedText, Content: ext.Text},
		Structured: Payload{Stage: constants.StageStructuredResult, Content: st.Raw},
		Extraction: ext,
		Inspection: st.Inspection,
		Provider:   st.Provider,
		Model:      st.Model,
	}, nil
}

// Render renders the payload of the given stage.
func (p *Processor) Render(res *Result, stage constants.Stage, format constants.ReportFormat) (render.Artifact, error) {
	pl, err := res.Payload(stage)
	if err != nil {
		return render.Artifact{}, err
	}
	return p.renderer.RenderStage(pl.Stage, pl.Content, format)
}

// Process is Run followed by Render.
func (p *Processor) Process(ctx context.Context, up Upload, stage constants.Stage, format constants.ReportFormat) (*Result, render.Artifact, error) {
	res, err := p.Run(ctx, up)
	if err != nil {
		return nil, render.Artifact{}, err
	}
	art, err := p.Render(res, stage, format)
	if err != nil {
		return res, render.Artifact{}, err
	}
	return res, art, nil
}

// stage writes data to <tempDir>/<uuid><ext> with mode 0600.
func (p *Processor) stage(data []byte, ext string) (string, func(), error) {
	if err := os.MkdirAll(p.tempDir, 0o700); err != nil {
		return "", nil, common.NewExtractionError(common.SourceLocalEngine, "create temp dir", err)
	}
	path := filepath.Join(p.tempDir, uuid.New().String()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		_ = os.Remove(path)
		return "", nil, common.NewExtractionError(common.SourceLocalEngine, "write temp file", err)
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("pipeline.cleanup_failed", "path", path, "error", err)
		}
	}
	return path, cleanup, nil
}
