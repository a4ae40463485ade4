// Package render turns a pipeline payload into a downloadable artifact.
package render

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// Layouts of the PDF report.
const (
	LayoutTable = "table"
	LayoutLines = "lines"
)

// Media types of rendered artifacts.
const (
	MediaTypeJSON = "application/json"
	MediaTypeText = "text/plain; charset=utf-8"
	MediaTypePDF  = "application/pdf"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Config struct {
	Title         string // default "Extracted Document Report"
	Layout        string // table | lines
	UnicodePolicy string // replace | ignore
}

// Artifact is one rendered download. It is produced on demand and never cached.
type Artifact struct {
	Format    constants.ReportFormat
	MediaType string
	Filename  string
	Data      []byte
}

type Renderer struct {
	cfg    Config
	logger *slog.Logger
}

func NewRenderer(cfg Config, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "Extracted Document Report"
	}
	if cfg.Layout == "" {
		cfg.Layout = LayoutTable
	}
	if cfg.UnicodePolicy == "" {
		cfg.UnicodePolicy = PolicyReplace
	}
	return &Renderer{cfg: cfg, logger: logger}
}

// ParseFormat accepts json, text (or txt), pdf and xlsx in any case.
func ParseFormat(s string) (constants.ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return constants.FormatJSON, nil
	case "text", "txt":
		return constants.FormatText, nil
	case "pdf":
		return constants.FormatPDF, nil
	case "xlsx":
		return constants.FormatXLSX, nil
	}
	return "", common.NewRenderError(fmt.Sprintf("unknown format %q (want one of %s)", s, strings.Join(constants.FormatNames(), ", ")), nil)
}

// Render renders structured content. See RenderStage for extracted text.
func (r *Renderer) Render(content string, format constants.ReportFormat) (Artifact, error) {
	return r.RenderStage(constants.StageStructuredResult, content, format)
}

// RenderStage renders content that came from the given pipeline stage.
// JSON and TEXT are passthroughs. For PDF and XLSX, structured content is
// parsed as JSON while extracted text is laid out line by line.
func (r *Renderer) RenderStage(stage constants.Stage, content string, format constants.ReportFormat) (Artifact, error) {
	start := time.Now()
	var (
		art Artifact
		err error
	)
	switch format {
	case constants.FormatJSON:
		art = Artifact{Format: format, MediaType: MediaTypeJSON, Filename: "output.json", Data: []byte(content)}
	case constants.FormatText:
		art = Artifact{Format: format, MediaType: MediaTypeText, Filename: "output.txt", Data: []byte(content)}
	case constants.FormatPDF:
		var data []byte
		data, err = r.renderPDF(stage, content)
		art = Artifact{Format: format, MediaType: MediaTypePDF, Filename: "report.pdf", Data: data}
	case constants.FormatXLSX:
		var data []byte
		data, err = r.renderXLSX(stage, content)
		art = Artifact{Format: format, MediaType: MediaTypeXLSX, Filename: "report.xlsx", Data: data}
	default:
		err = common.NewRenderError(fmt.Sprintf("unknown format %q", format), nil)
	}
	if err != nil {
		r.logger.Error("render.failed", "format", format, "stage", stage, "error", err)
		return Artifact{}, err
	}

	r.logger.Info("render.ok",
		"format", format,
		"stage", stage,
		"bytes", len(art.Data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return art, nil
}
