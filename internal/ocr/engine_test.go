package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinLanguages(t *testing.T) {
	tests := []struct {
		name     string
		langs    []string
		fallback []string
		want     string
	}{
		{name: "default", want: "eng"},
		{name: "fallback", fallback: []string{"deu"}, want: "deu"},
		{name: "request wins", langs: []string{"fra", "jpn"}, fallback: []string{"deu"}, want: "fra+jpn"},
		{name: "dedupe and case", langs: []string{"ENG", " eng ", "spa"}, want: "eng+spa"},
		{name: "plus joined input", langs: []string{"eng+hin", "hin"}, want: "eng+hin"},
		{name: "blank entries", langs: []string{"", " "}, fallback: []string{"spa"}, want: "spa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinLanguages(tt.langs, tt.fallback))
		})
	}
}

func TestNormalize(t *testing.T) {
	in := "Patient:\tJane   Doe\r\nDOB 1990-01-01   \n\n\n\n-----\nDiagnosis: flu\f"
	assert.Equal(t, "Patient: Jane Doe\nDOB 1990-01-01\n\nDiagnosis: flu", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
