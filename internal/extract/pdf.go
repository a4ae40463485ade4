package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
)

type PDFConfig struct {
	MaxPages         int // 0 = no limit
	DefaultLanguages []string
}

// PDFExtractor reads each page's text layer and falls back to rasterize+OCR
// for pages that have none.
type PDFExtractor struct {
	cfg        PDFConfig
	engine     ocr.Engine
	rasterizer Rasterizer
	logger     *slog.Logger
}

func NewPDFExtractor(cfg PDFConfig, engine ocr.Engine, rasterizer Rasterizer, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{cfg: cfg, engine: engine, rasterizer: rasterizer, logger: logger}
}

// Extract returns each page's text followed by "\n", in page order.
func (p *PDFExtractor) Extract(ctx context.Context, doc Document) (TextExtractionResult, error) {
	res := TextExtractionResult{SourceType: constants.PDF, MediaType: constants.MediaTypePDF}

	layers, err := readTextLayers(doc.Data)
	if err != nil {
		return res, err
	}
	total := len(layers)
	if p.cfg.MaxPages > 0 && total > p.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("document has %d pages; only the first %d were extracted", total, p.cfg.MaxPages))
		layers = layers[:p.cfg.MaxPages]
	}

	var b strings.Builder
	for i, layer := range layers {
		page := i + 1
		text, usedOCR, warns, err := p.pageText(ctx, doc, page, layer)
		if err != nil {
			return res, fmt.Errorf("page %d: %w", page, err)
		}
		res.Warnings = append(res.Warnings, warns...)
		if usedOCR {
			res.OCRPages = append(res.OCRPages, page)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	res.Text = b.String()
	res.Pages = len(layers)
	switch {
	case len(res.OCRPages) == 0:
		res.Method = MethodPDFText
	case len(res.OCRPages) == len(layers):
		res.Method = MethodPDFOCR
	default:
		res.Method = MethodPDFMixed
	}
	if len(res.OCRPages) > 0 {
		res.Engine = p.engine.Name()
		res.Language = ocr.JoinLanguages(doc.Languages, p.cfg.DefaultLanguages)
	}
	p.logger.Debug("extract.pdf.done",
		"pages", res.Pages,
		"ocr_pages", len(res.OCRPages),
		"method", res.Method,
	)
	return res, nil
}

// pageText returns the page's text layer, or the OCR fallback when the layer is
// empty. A read error that still yielded text keeps that text.
func (p *PDFExtractor) pageText(ctx context.Context, doc Document, page int, layer pageLayer) (string, bool, []string, error) {
	var warns []string
	text := strings.TrimSpace(layer.text)
	if text != "" {
		if layer.err != nil {
			warns = append(warns, fmt.Sprintf("page %d: text layer partially unreadable (%v)", page, layer.err))
		}
		return text, false, warns, nil
	}
	if layer.err != nil {
		warns = append(warns, fmt.Sprintf("page %d: text layer unreadable (%v); using OCR", page, layer.err))
	}
	ocrText, warn, err := p.ocrPage(ctx, doc, page)
	if err != nil {
		return "", false, warns, err
	}
	if warn != "" {
		warns = append(warns, warn)
	}
	return ocrText, true, warns, nil
}

func (p *PDFExtractor) ocrPage(ctx context.Context, doc Document, page int) (string, string, error) {
	if p.engine == nil || p.rasterizer == nil {
		return "", "", common.NewConfigurationError("no OCR engine configured for scanned PDF pages", nil)
	}
	img, err := p.rasterizer.Rasterize(ctx, doc, page)
	if errors.Is(err, ErrNoPageImage) {
		return "", fmt.Sprintf("page %d: no text layer and no image; treated as blank", page), nil
	}
	if err != nil {
		return "", "", err
	}
	p.logger.Debug("extract.pdf.ocr_fallback", "page", page, "rasterizer", p.rasterizer.Name(), "image_bytes", len(img))
	text, err := p.engine.Recognize(ctx, img, ocr.ResolveLanguages(doc.Languages, p.cfg.DefaultLanguages))
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(text), "", nil
}

type pageLayer struct {
	text string
	err  error
}

// readTextLayers parses the PDF once and returns every page's plain text.
// The parser panics on some malformed inputs; those surface as malformed-document errors.
func readTextLayers(data []byte) (layers []pageLayer, err error) {
	defer func() {
		if r := recover(); r != nil {
			layers = nil
			err = common.NewExtractionError(common.SourceMalformedDocument, "unreadable PDF", fmt.Errorf("%v", r))
		}
	}()

	if len(data) == 0 {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "empty PDF", nil)
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "open PDF", err)
	}
	n := r.NumPage()
	if n <= 0 {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "PDF has no pages", nil)
	}

	layers = make([]pageLayer, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			layers = append(layers, pageLayer{})
			continue
		}
		// nil lets the reader resolve the page's own font resources
		text, perr := page.GetPlainText(nil)
		layers = append(layers, pageLayer{text: text, err: perr})
	}
	return layers, nil
}
