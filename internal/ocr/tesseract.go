package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

type TesseractConfig struct {
	Binary           string   // binary name or absolute path; if empty -> "tesseract"
	TessdataDir      string
	DefaultLanguages []string // default ["eng"]
	TempDir          string   // where images are staged for the CLI; default os.TempDir()
	PSM              int      // page segmentation mode; 0 leaves tesseract's default
}

// TesseractEngine shells out to the tesseract CLI.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if len(cfg.DefaultLanguages) == 0 {
		cfg.DefaultLanguages = []string{DefaultLanguage}
	}
	if runner == nil {
		runner = NewExecRunner(logger)
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize stages the image in a temp file (removed before returning) and runs
// tesseract <file> stdout -l <langs>.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, langs []string) (string, error) {
	if len(image) == 0 {
		return "", common.NewExtractionError(common.SourceMalformedDocument, "empty image", nil)
	}
	start := time.Now()
	lang := JoinLanguages(langs, e.cfg.DefaultLanguages)

	f, err := os.CreateTemp(e.cfg.TempDir, "ocr-*.img")
	if err != nil {
		return "", common.NewExtractionError(common.SourceLocalEngine, "stage image", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.logger.Warn("ocr.tesseract.cleanup_failed", "path", path, "error", rmErr)
		}
	}()
	if _, err := f.Write(image); err != nil {
		_ = f.Close()
		return "", common.NewExtractionError(common.SourceLocalEngine, "stage image", err)
	}
	if err := f.Close(); err != nil {
		return "", common.NewExtractionError(common.SourceLocalEngine, "stage image", err)
	}

	args := []string{path, "stdout", "-l", lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		msg := "tesseract failed"
		if s := strings.TrimSpace(string(errb)); s != "" {
			msg += ": " + truncate(s, 512)
		}
		return "", common.NewExtractionError(common.SourceLocalEngine, msg, err)
	}

	txt := Normalize(string(out))
	e.logger.Debug("ocr.tesseract.ok",
		"lang", lang,
		"image_bytes", len(image),
		"text_len", len(txt),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}
