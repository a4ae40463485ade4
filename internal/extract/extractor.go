// Package extract is Stage 1 of the pipeline: it turns an uploaded document
// into plain text, dispatching on the detected input format.
package extract

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/ocr"
)

type Config struct {
	DefaultLanguages []string
	MaxPages         int
}

// Extractor routes IMAGE to the OCR engine, PDF to the text-layer reader with
// OCR fallback, and DOCX to the paragraph reader.
type Extractor struct {
	cfg    Config
	engine ocr.Engine
	pdf    TextExtractor
	docx   TextExtractor
	logger *slog.Logger
}

func NewExtractor(cfg Config, engine ocr.Engine, rasterizer Rasterizer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.DefaultLanguages) == 0 {
		cfg.DefaultLanguages = []string{ocr.DefaultLanguage}
	}
	return &Extractor{
		cfg:    cfg,
		engine: engine,
		pdf: NewPDFExtractor(PDFConfig{
			MaxPages:         cfg.MaxPages,
			DefaultLanguages: cfg.DefaultLanguages,
		}, engine, rasterizer, logger),
		docx:   NewDOCXExtractor(logger),
		logger: logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, doc Document) (TextExtractionResult, error) {
	start := time.Now()
	mediaType, warnings := ResolveMediaType(doc)
	format := constants.MapMediaTypeToFormat(mediaType)

	var (
		res TextExtractionResult
		err error
	)
	switch format {
	case constants.IMAGE:
		res, err = e.extractImage(ctx, doc, mediaType)
	case constants.PDF:
		res, err = e.pdf.Extract(ctx, doc)
	case constants.DOCX:
		res, err = e.docx.Extract(ctx, doc)
	default:
		e.logger.Warn("extract.unsupported", "name", doc.Name, "media_type", mediaType)
		return TextExtractionResult{MediaType: mediaType}, common.NewUnsupportedInputError(mediaType)
	}
	res.Warnings = append(warnings, res.Warnings...)
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("extract.failed",
			"name", doc.Name,
			"format", format,
			"source", common.SourceOf(err),
			"elapsed_ms", res.Duration.Milliseconds(),
			"error", err,
		)
		return res, err
	}

	e.logger.Info("extract.done",
		"name", doc.Name,
		"format", format,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, doc Document, mediaType string) (TextExtractionResult, error) {
	res := TextExtractionResult{
		SourceType: constants.IMAGE,
		MediaType:  mediaType,
		Method:     MethodImageOCR,
		Pages:      1,
		OCRPages:   []int{1},
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(doc.Data)); err != nil {
		return res, common.NewExtractionError(common.SourceMalformedDocument, "undecodable image", err)
	}
	if e.engine == nil {
		return res, common.NewConfigurationError("no OCR engine configured", nil)
	}
	langs := ocr.ResolveLanguages(doc.Languages, e.cfg.DefaultLanguages)
	text, err := e.engine.Recognize(ctx, doc.Data, langs)
	if err != nil {
		return res, err
	}
	res.Text = text
	res.Engine = e.engine.Name()
	res.Language = ocr.JoinLanguages(langs, nil)
	return res, nil
}
