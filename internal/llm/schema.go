package llm

import "github.com/joseph-ayodele/doc-extractor/constants"

// BuildPatientJSONSchema returns the advisory JSON-Schema (draft 2020-12 subset)
// for the structured patient record. It is deliberately loose: every field is
// optional and extra keys are allowed, since the model is free to pick its own shape.
func BuildPatientJSONSchema() map[string]any {
	text := map[string]any{"type": "string"}
	textOrList := map[string]any{"type": []string{"string", "array", "object"}}

	addressProps := map[string]any{}
	for _, p := range constants.AddressParts {
		addressProps[p] = map[string]any{"type": []string{"string", "number"}}
	}

	props := map[string]any{
		string(constants.FieldName):      text,
		string(constants.FieldAge):       map[string]any{"type": []string{"integer", "string"}},
		string(constants.FieldGender):    text,
		string(constants.FieldBirthdate): text,
		string(constants.FieldAddress): map[string]any{
			"type":       []string{"object", "string"},
			"properties": addressProps,
		},
		string(constants.FieldPhone):          map[string]any{"type": []string{"string", "array"}},
		string(constants.FieldEmail):          map[string]any{"type": []string{"string", "array"}},
		string(constants.FieldMedicalHistory): textOrList,
		string(constants.FieldDiagnosis):      textOrList,
		string(constants.FieldPrescription):   textOrList,
		string(constants.FieldAdditionalInfo): map[string]any{},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties":           props,
	}
}
