package constants

import "strings"

// OperationStatus is the state of an asynchronous remote OCR operation.
type OperationStatus string

// Values as reported by the Read API.
const (
	OperationNotStarted OperationStatus = "notStarted"
	OperationRunning    OperationStatus = "running"
	OperationSucceeded  OperationStatus = "succeeded"
	OperationFailed     OperationStatus = "failed"
)

// Terminal reports whether polling can stop.
func (s OperationStatus) Terminal() bool {
	return s == OperationSucceeded || s == OperationFailed
}

// Stage tags a payload with the pipeline step that produced it.
type Stage string

const (
	StageExtractedText    Stage = "EXTRACTED_TEXT"
	StageStructuredResult Stage = "STRUCTURED_RESULT"
)

// ParseStage maps user-facing source names onto stages.
func ParseStage(s string) (Stage, bool) {
	switch s {
	case "", "structured", "structured_result", string(StageStructuredResult):
		return StageStructuredResult, true
	case "extracted", "text", "extracted_text", string(StageExtractedText):
		return StageExtractedText, true
	default:
		return "", false
	}
}

// ReportFormat is the output format of a rendered artifact.
type ReportFormat string

const (
	FormatJSON ReportFormat = "JSON"
	FormatText ReportFormat = "TEXT"
	FormatPDF  ReportFormat = "PDF"
	FormatXLSX ReportFormat = "XLSX"
)

var allFormats = []ReportFormat{FormatJSON, FormatText, FormatPDF, FormatXLSX}

// FormatNames returns the lowercase names accepted on the wire.
func FormatNames() []string {
	out := make([]string, len(allFormats))
	for i, f := range allFormats {
		out[i] = strings.ToLower(string(f))
	}
	return out
}
