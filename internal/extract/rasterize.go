package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
)

// ErrNoPageImage means a page has nothing to rasterize.
var ErrNoPageImage = errors.New("page has no image content")

// Rasterizer turns one PDF page (1-based) into image bytes for OCR.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, doc Document, page int) ([]byte, error)
}

type PdftoppmConfig struct {
	Binary  string // default "pdftoppm"
	DPI     int    // default 300
	TempDir string
}

// PdftoppmRasterizer renders pages with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	cfg    PdftoppmConfig
	runner ocr.Runner
	logger *slog.Logger
}

func NewPdftoppmRasterizer(cfg PdftoppmConfig, runner ocr.Runner, logger *slog.Logger) *PdftoppmRasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if runner == nil {
		runner = ocr.NewExecRunner(logger)
	}
	return &PdftoppmRasterizer{cfg: cfg, runner: runner, logger: logger}
}

func (r *PdftoppmRasterizer) Name() string { return "pdftoppm" }

// Rasterize runs pdftoppm -f k -l k -r DPI -png -singlefile <in.pdf> <tmp/page>
// and returns tmp/page.png. The scratch directory is removed before returning.
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, doc Document, page int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp(r.cfg.TempDir, "raster-*")
	if err != nil {
		return nil, common.NewExtractionError(common.SourceLocalEngine, "create raster dir", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("extract.raster.cleanup_failed", "path", tmpDir, "error", err)
		}
	}()

	in := doc.Path
	if in == "" {
		in = filepath.Join(tmpDir, "in.pdf")
		if err := os.WriteFile(in, doc.Data, 0o600); err != nil {
			return nil, common.NewExtractionError(common.SourceLocalEngine, "stage PDF", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	k := strconv.Itoa(page)
	_, errb, err := r.runner.Run(ctx, r.cfg.Binary,
		"-f", k, "-l", k,
		"-r", strconv.Itoa(r.cfg.DPI),
		"-png", "-singlefile",
		in, prefix,
	)
	if err != nil {
		msg := "pdftoppm failed"
		if s := strings.TrimSpace(string(errb)); s != "" {
			msg += ": " + s
		}
		return nil, common.NewExtractionError(common.SourceLocalEngine, msg, err)
	}

	img, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, common.NewExtractionError(common.SourceLocalEngine, fmt.Sprintf("pdftoppm produced no image for page %d", page), err)
	}
	return img, nil
}

// EmbeddedImageRasterizer pulls the largest embedded image off a page with
// pdfcpu. It suits scanner output where each page is one full-page image and
// needs no external binaries.
type EmbeddedImageRasterizer struct {
	logger *slog.Logger
}

func NewEmbeddedImageRasterizer(logger *slog.Logger) *EmbeddedImageRasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddedImageRasterizer{logger: logger}
}

func (r *EmbeddedImageRasterizer) Name() string { return "pdfcpu-images" }

func (r *EmbeddedImageRasterizer) Rasterize(ctx context.Context, doc Document, page int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conf := model.NewDefaultConfiguration()
	pages, err := api.ExtractImagesRaw(bytes.NewReader(doc.Data), []string{strconv.Itoa(page)}, conf)
	if err != nil {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, fmt.Sprintf("read images on page %d", page), err)
	}

	var best *model.Image
	for _, imgs := range pages {
		for nr := range imgs {
			img := imgs[nr]
			if best == nil || img.Width*img.Height > best.Width*best.Height {
				best = &img
			}
		}
	}
	if best == nil || best.Reader == nil {
		return nil, ErrNoPageImage
	}
	data, err := io.ReadAll(best)
	if err != nil {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, fmt.Sprintf("read image on page %d", page), err)
	}
	r.logger.Debug("extract.raster.embedded",
		"page", page,
		"image", best.Name,
		"type", best.FileType,
		"width", best.Width,
		"height", best.Height,
	)
	return data, nil
}
