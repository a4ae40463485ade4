package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRows(t *testing.T) {
	rows, ok := ParseRows(`{"b": 2, "a": {"y": true, "x": null}, "c": [1, "two", {"k": "v"}]}`)
	assert.True(t, ok)
	assert.Equal(t, []Row{
		{"a.x", ""},
		{"a.y", "true"},
		{"b", "2"},
		{"c", `1, two, {"k":"v"}`},
	}, rows)

	rows, ok = ParseRows(`["x", "y"]`)
	assert.True(t, ok)
	assert.Equal(t, []Row{{"Value", "x, y"}}, rows)

	_, ok = ParseRows(`{"a":1} trailing`)
	assert.False(t, ok)

	assert.Equal(t, invalidJSONRows, RowsOrFallback("nope"))
}

func TestDiagnosisSummary(t *testing.T) {
	assert.Equal(t, "Flu", DiagnosisSummary(`{"Diagnosis": "Flu"}`))
	assert.Equal(t, "Flu, Cold", DiagnosisSummary(`{"diagnoses": ["Flu", "Cold"]}`))
	assert.Equal(t, "", DiagnosisSummary(`{"Name": "Jane"}`))
	assert.Equal(t, "", DiagnosisSummary(`not json`))
}

func TestApplyUnicodePolicy(t *testing.T) {
	assert.Equal(t, "Zoë €5 ?", ApplyUnicodePolicy("Zoë €5 李", PolicyReplace))
	assert.Equal(t, "Zoë €5 ", ApplyUnicodePolicy("Zoë €5 李", PolicyIgnore))
	assert.Equal(t, "a\nb", ApplyUnicodePolicy("a\nb", PolicyReplace))
	assert.Equal(t, "a\nb", ApplyUnicodePolicy("a\r\nb", PolicyReplace))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", ""}, splitLines("a\r\nb\rc\n"))
}
