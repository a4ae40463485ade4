package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

const canned = `{"Name": "Jane Doe", "Birthdate": "1990-01-01", "Address": {"City": "Lagos", "Country": "NG"}, "Diagnosis": "Seasonal flu", "Prescription": ["Rest", "Fluids"]}`

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		require.NoError(t, err)
		b.WriteString(s)
	}
	return b.String()
}

func TestRenderJSONAndTextArePassthrough(t *testing.T) {
	r := NewRenderer(Config{}, nil)
	content := "{\"Name\": \"Zoë\"}\n"

	art, err := r.Render(content, constants.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []byte(content), art.Data)
	assert.Equal(t, MediaTypeJSON, art.MediaType)
	assert.Equal(t, "output.json", art.Filename)

	art, err = r.Render("not json at all", constants.FormatText)
	require.NoError(t, err)
	assert.Equal(t, []byte("not json at all"), art.Data)
	assert.Equal(t, MediaTypeText, art.MediaType)
}

func TestRenderPDFTable(t *testing.T) {
	r := NewRenderer(Config{Title: "Patient Report"}, nil)

	art, err := r.Render(canned, constants.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, MediaTypePDF, art.MediaType)
	require.True(t, bytes.HasPrefix(art.Data, []byte("%PDF-")))

	text := pdfText(t, art.Data)
	for _, want := range []string{"Patient Report", "Address.City", "Lagos", "Jane Doe", "Rest, Fluids", "Diagnosis Summary", "Seasonal flu"} {
		assert.Contains(t, text, want)
	}
}

func TestRenderPDFInvalidJSONFallsBack(t *testing.T) {
	for _, layout := range []string{LayoutTable, LayoutLines} {
		t.Run(layout, func(t *testing.T) {
			r := NewRenderer(Config{Layout: layout}, nil)
			art, err := r.Render("Sorry, I cannot help with that.", constants.FormatPDF)
			require.NoError(t, err)

			text := pdfText(t, art.Data)
			assert.Contains(t, text, "Error")
			assert.Contains(t, text, "Invalid JSON data")
			assert.Contains(t, text, noDiagnosis)
			assert.NotContains(t, text, "Sorry")
		})
	}
}

func TestRenderPDFExtractedText(t *testing.T) {
	r := NewRenderer(Config{}, nil)
	art, err := r.RenderStage(constants.StageExtractedText, "Patient: Jane Doe\nDOB 1990-01-01\n", constants.FormatPDF)
	require.NoError(t, err)

	text := pdfText(t, art.Data)
	assert.Contains(t, text, "Patient: Jane Doe")
	assert.NotContains(t, text, "Invalid JSON data")
	assert.NotContains(t, text, "Diagnosis Summary")
}

func TestRenderPDFExtractedTextCRLF(t *testing.T) {
	r := NewRenderer(Config{}, nil)
	art, err := r.RenderStage(constants.StageExtractedText, "Patient: Jane\r\nDOB 1990\r\n", constants.FormatPDF)
	require.NoError(t, err)

	text := pdfText(t, art.Data)
	assert.Contains(t, text, "Patient: Jane")
	assert.Contains(t, text, "DOB 1990")
	assert.NotContains(t, text, "?")
}

func TestRenderPDFUnicodePolicy(t *testing.T) {
	content := `{"Name": "李雷 Zoë"}`

	art, err := NewRenderer(Config{UnicodePolicy: PolicyReplace}, nil).Render(content, constants.FormatPDF)
	require.NoError(t, err)
	assert.Contains(t, pdfText(t, art.Data), "??")

	art, err = NewRenderer(Config{UnicodePolicy: PolicyIgnore}, nil).Render(content, constants.FormatPDF)
	require.NoError(t, err)
	assert.NotContains(t, pdfText(t, art.Data), "??")
}

func TestRenderXLSX(t *testing.T) {
	art, err := NewRenderer(Config{}, nil).Render(canned, constants.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", art.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(art.Data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Field", "Value"}, rows[0])
	assert.Contains(t, rows, []string{"Address.City", "Lagos"})
	assert.Contains(t, rows, []string{"Diagnosis Summary", "Seasonal flu"})
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := NewRenderer(Config{}, nil).Render("{}", constants.ReportFormat("DOCX"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRender)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]constants.ReportFormat{
		"json": constants.FormatJSON,
		"TXT":  constants.FormatText,
		"text": constants.FormatText,
		" Pdf": constants.FormatPDF,
		"xlsx": constants.FormatXLSX,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, common.ErrRender)
}
