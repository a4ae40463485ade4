package render

import (
	"bytes"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const (
	noDiagnosis = "No diagnosis information available."

	fieldColW = 60.0
	lineH     = 7.0
)

func (r *Renderer) renderPDF(stage constants.Stage, content string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.cfg.Title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(ApplyUnicodePolicy(s, r.cfg.UnicodePolicy)) }

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text(r.cfg.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	switch {
	case stage == constants.StageExtractedText:
		heading(pdf, "Extracted Text")
		writeLines(pdf, text, splitLines(content))
	case r.cfg.Layout == LayoutLines:
		heading(pdf, "Structured Result")
		if _, ok := ParseRows(content); ok {
			writeLines(pdf, text, splitLines(content))
		} else {
			writeLines(pdf, text, []string{invalidJSONRows[0].Field + ": " + invalidJSONRows[0].Value})
		}
	default:
		heading(pdf, "Structured Result")
		writeTable(pdf, text, RowsOrFallback(content))
	}

	if stage != constants.StageExtractedText {
		pdf.Ln(6)
		heading(pdf, "Diagnosis Summary")
		summary := DiagnosisSummary(content)
		if summary == "" {
			summary = noDiagnosis
		}
		writeLines(pdf, text, []string{summary})
	}

	if err := pdf.Error(); err != nil {
		return nil, common.NewRenderError("build PDF", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, common.NewRenderError("write PDF", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, s string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, s, "", 1, "L", false, 0, "")
}

func writeLines(pdf *fpdf.Fpdf, text func(string) string, lines []string) {
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		pdf.MultiCell(0, 6, text(l), "", "L", false)
	}
}

// writeTable draws a bordered two-column field/value table. The value column
// wraps; the field cell is stretched to the value's height.
func writeTable(pdf *fpdf.Fpdf, text func(string) string, rows []Row) {
	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	valueW := pageW - left - right - fieldColW

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(fieldColW, lineH, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueW, lineH, "Value", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		field, value := text(row.Field), text(row.Value)

		// estimate wrapped height so a row is not split across pages
		est := lineH * estimateLines(pdf, value, valueW)
		if pdf.GetY()+est > pageH-bottom {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()
		pdf.SetXY(x+fieldColW, y)
		pdf.MultiCell(valueW, lineH, value, "1", "L", false)
		h := pdf.GetY() - y
		if h <= 0 {
			// MultiCell broke the page anyway; draw the field on the new page
			h = lineH
			y = pdf.GetY() - lineH
		}
		pdf.SetXY(x, y)
		pdf.CellFormat(fieldColW, h, field, "1", 0, "LT", false, 0, "")
		pdf.SetXY(x, y+h)
	}
}

func estimateLines(pdf *fpdf.Fpdf, s string, w float64) float64 {
	inner := w - 2
	if inner <= 0 {
		return 1
	}
	n := 0.0
	for _, part := range strings.Split(s, "\n") {
		n += math.Max(1, math.Ceil(pdf.GetStringWidth(part)/inner))
	}
	return n
}
