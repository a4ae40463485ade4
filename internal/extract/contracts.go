package extract

import (
	"context"
	"time"
)

// Document is one uploaded file. Path is optional; when set it points at a
// request-scoped copy of Data on disk.
type Document struct {
	Name      string
	MediaType string
	Data      []byte
	Path      string
	Languages []string
}

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "IMAGE" | "PDF" | "DOCX"
	MediaType  string
	Method     string // "image-ocr" | "pdf-text" | "pdf-mixed" | "pdf-ocr" | "docx"
	Language   string
	OCRPages   []int // 1-based pages that went through OCR
	Engine     string
	Duration   time.Duration
	Warnings   []string
}

// Extraction methods.
const (
	MethodImageOCR = "image-ocr"
	MethodPDFText  = "pdf-text"
	MethodPDFMixed = "pdf-mixed"
	MethodPDFOCR   = "pdf-ocr"
	MethodDOCX     = "docx"
)
