package llm

import (
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

const systemPrompt = "You are an AI that extracts structured data from text. " +
	"Output must be strictly valid JSON format without any extra text."

// BuildSystemPrompt returns the fixed system instruction.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt embeds text verbatim (no truncation) and lists the fields we want back.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract structured information from the following text and return only a valid JSON object.\n")
	b.WriteString("Use these keys when the information is present: ")
	b.WriteString(fieldList())
	b.WriteString(".\n\n")
	b.WriteString("Strictly output JSON format only, with no extra text or explanation.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(text)
	b.WriteString("\n\nOutput (strictly JSON format only):")
	return b.String()
}

func fieldList() string {
	fields := constants.AsStringSlice()
	for i, f := range fields {
		if f == string(constants.FieldAddress) {
			fields[i] = f + " (" + strings.Join(constants.AddressParts, ", ") + ")"
		}
	}
	return strings.Join(fields, ", ")
}
