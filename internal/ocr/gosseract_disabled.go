//go:build !gosseract

package ocr

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

type GosseractConfig struct {
	TessdataDir      string
	DefaultLanguages []string
}

// GosseractEngine is unavailable without the gosseract build tag.
type GosseractEngine struct{}

func NewGosseractEngine(GosseractConfig, *slog.Logger) (*GosseractEngine, error) {
	return nil, common.NewConfigurationError("OCR_BACKEND=embedded requires a binary built with -tags gosseract", nil)
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Recognize(context.Context, []byte, []string) (string, error) {
	return "", common.NewConfigurationError("embedded OCR engine not compiled in", nil)
}
