package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/extract"
	"github.com/joseph-ayodele/doc-extractor/internal/llm"
	"github.com/joseph-ayodele/doc-extractor/internal/llm/anthropic"
	"github.com/joseph-ayodele/doc-extractor/internal/llm/gemini"
	"github.com/joseph-ayodele/doc-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

// Build validates cfg and wires the backends it selects. The choice is static
// for the life of the process.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := NewOCREngine(cfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "ocr engine")
	}
	ex := extract.NewExtractor(extract.Config{
		DefaultLanguages: cfg.OCR.Languages,
		MaxPages:         cfg.OCR.MaxPages,
	}, engine, NewRasterizer(cfg, logger), logger)

	st, err := NewStructurer(ctx, cfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "structurer")
	}

	rd := render.NewRenderer(render.Config{
		Title:         cfg.Render.Title,
		Layout:        cfg.Render.Layout,
		UnicodePolicy: cfg.Render.UnicodePolicy,
	}, logger)

	logger.Info("pipeline.build.ok",
		"ocr_backend", cfg.OCR.Backend,
		"ocr_engine", engine.Name(),
		"rasterizer", cfg.OCR.Rasterizer,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
	)
	return NewProcessor(cfg.TempDir, ex, st, rd, logger), nil
}

func NewOCREngine(cfg *common.Config, logger *slog.Logger) (ocr.Engine, error) {
	switch cfg.OCR.Backend {
	case "cloud":
		return ocr.NewCloudEngine(ocr.CloudConfig{
			Endpoint:        cfg.OCR.Cloud.Endpoint,
			Key:             cfg.OCR.Cloud.Key,
			InitialInterval: cfg.OCR.Cloud.InitialInterval.Std(),
			MaxInterval:     cfg.OCR.Cloud.MaxInterval.Std(),
			MaxAttempts:     cfg.OCR.Cloud.MaxAttempts,
			Timeout:         cfg.OCR.Cloud.Timeout.Std(),
		}, logger)
	case "embedded":
		return ocr.NewGosseractEngine(ocr.GosseractConfig{
			TessdataDir:      cfg.OCR.TessdataDir,
			DefaultLanguages: cfg.OCR.Languages,
		}, logger)
	default:
		return ocr.NewTesseractEngine(ocr.TesseractConfig{
			Binary:           cfg.OCR.Tesseract,
			TessdataDir:      cfg.OCR.TessdataDir,
			DefaultLanguages: cfg.OCR.Languages,
			PSM:              cfg.OCR.PSM,
			TempDir:          cfg.TempDir,
		}, ocr.NewExecRunner(logger), logger), nil
	}
}

func NewRasterizer(cfg *common.Config, logger *slog.Logger) extract.Rasterizer {
	if cfg.OCR.Rasterizer == "embedded" {
		return extract.NewEmbeddedImageRasterizer(logger)
	}
	return extract.NewPdftoppmRasterizer(extract.PdftoppmConfig{
		Binary:  cfg.OCR.Pdftoppm,
		DPI:     cfg.OCR.DPI,
		TempDir: cfg.TempDir,
	}, ocr.NewExecRunner(logger), logger)
}

func NewStructurer(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.Structurer, error) {
	l := cfg.LLM
	switch l.Provider {
	case llm.ProviderAnthropic:
		return anthropic.NewClient(anthropic.Config{
			APIKey:      l.APIKey,
			BaseURL:     l.BaseURL,
			Model:       l.Model,
			Temperature: l.Temperature,
			MaxTokens:   l.MaxTokens,
			Timeout:     l.Timeout.Std(),
		}, logger), nil
	case llm.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      l.APIKey,
			BaseURL:     l.BaseURL,
			Model:       l.Model,
			Temperature: l.Temperature,
			MaxTokens:   l.MaxTokens,
			Timeout:     l.Timeout.Std(),
		}, logger)
	default:
		return openai.NewClient(openai.Config{
			APIKey:      l.APIKey,
			BaseURL:     l.BaseURL,
			Model:       l.Model,
			Temperature: l.Temperature,
			MaxTokens:   l.MaxTokens,
			Timeout:     l.Timeout.Std(),
		}, logger), nil
	}
}
