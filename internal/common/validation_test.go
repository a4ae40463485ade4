package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorLanguagesAndFormat(t *testing.T) {
	v := NewValidator()
	for _, lang := range []string{"eng", "chi_sim", "Deu", "en"} {
		v.Field("lang", lang, LanguageCode)
	}
	v.Field("format", "PDF", OneOf("json", "text", "pdf", "xlsx"))
	v.Field("source", "raw", OneOf("structured", "extracted"))

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)

	err := ValidateAndReturnError(v)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "'Deu'")
	assert.Contains(t, err.Error(), "'en'")
	assert.Contains(t, err.Error(), "structured, extracted")
}

func TestValidatorClean(t *testing.T) {
	v := NewValidator().Field("file", "scan.png", Required)
	assert.NoError(t, ValidateAndReturnError(v))
	assert.Empty(t, v.ErrorMessage())
}
