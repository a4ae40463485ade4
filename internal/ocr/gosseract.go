//go:build gosseract

package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

type GosseractConfig struct {
	TessdataDir      string
	DefaultLanguages []string
}

// GosseractEngine runs Tesseract in-process through cgo. A fresh client is used per call.
type GosseractEngine struct {
	cfg           GosseractConfig
	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

func NewGosseractEngine(cfg GosseractConfig, logger *slog.Logger) (*GosseractEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.DefaultLanguages) == 0 {
		cfg.DefaultLanguages = []string{DefaultLanguage}
	}
	return &GosseractEngine{cfg: cfg, clientFactory: gosseract.NewClient, logger: logger}, nil
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(ctx context.Context, image []byte, langs []string) (string, error) {
	if len(image) == 0 {
		return "", common.NewExtractionError(common.SourceMalformedDocument, "empty image", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", common.NewExtractionError(common.SourceLocalEngine, "ocr cancelled", err)
	}
	start := time.Now()
	resolved := ResolveLanguages(langs, e.cfg.DefaultLanguages)

	c := e.clientFactory()
	defer func() {
		if err := c.Close(); err != nil {
			e.logger.Warn("ocr.gosseract.close_error", "error", err)
		}
	}()

	if e.cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", common.NewExtractionError(common.SourceLocalEngine, "set tessdata prefix", err)
		}
	}
	if err := c.SetLanguage(resolved...); err != nil {
		return "", common.NewExtractionError(common.SourceLocalEngine, "set languages", err)
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", common.NewExtractionError(common.SourceMalformedDocument, "set image", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", common.NewExtractionError(common.SourceLocalEngine, "recognize text", err)
	}

	txt := Normalize(text)
	e.logger.Debug("ocr.gosseract.ok",
		"lang", strings.Join(resolved, "+"),
		"text_len", len(txt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}
