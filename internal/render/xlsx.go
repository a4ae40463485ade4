package render

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const reportSheet = "Report"

// renderXLSX writes one Report sheet. Structured JSON becomes Field/Value rows;
// anything else (including extracted text) goes in one row per line.
func (r *Renderer) renderXLSX(stage constants.Stage, content string) ([]byte, error) {
	var rows []Row
	if stage != constants.StageExtractedText {
		rows, _ = ParseRows(content)
	}
	if rows == nil {
		for i, l := range splitLines(content) {
			rows = append(rows, Row{Field: lineLabel(i), Value: l})
		}
	}
	if stage != constants.StageExtractedText {
		if d := DiagnosisSummary(content); d != "" {
			rows = append(rows, Row{Field: "Diagnosis Summary", Value: d})
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if index, _ := f.GetSheetIndex(reportSheet); index == -1 {
		if _, err := f.NewSheet(reportSheet); err != nil {
			return nil, common.NewRenderError("xlsx sheet", err)
		}
	}
	activeIndex, _ := f.GetSheetIndex(reportSheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(reportSheet, cell, v)
	}
	write(1, 1, "Field")
	write(2, 1, "Value")
	for i, row := range rows {
		write(1, i+2, row.Field)
		write(2, i+2, row.Value)
	}

	_ = f.SetColWidth(reportSheet, "A", "A", 28)
	_ = f.SetColWidth(reportSheet, "B", "B", 80)
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(reportSheet, "A1", "B1", style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, common.NewRenderError("xlsx write", err)
	}
	return buf.Bytes(), nil
}

func lineLabel(i int) string {
	return "Line " + strconv.Itoa(i+1)
}
