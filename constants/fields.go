package constants

import (
	"strings"
)

// Field is a canonical key requested from the structuring model.
type Field string

const (
	FieldName           Field = "Name"
	FieldAge            Field = "Age"
	FieldGender         Field = "Gender"
	FieldBirthdate      Field = "Birthdate"
	FieldAddress        Field = "Address"
	FieldPhone          Field = "Phone"
	FieldEmail          Field = "Email"
	FieldMedicalHistory Field = "Medical History"
	FieldDiagnosis      Field = "Diagnosis"
	FieldPrescription   Field = "Prescription"
	FieldAdditionalInfo Field = "Additional Information"
)

// AddressParts are the subfields the Address object is decomposed into.
var AddressParts = []string{"Street", "City", "State", "Postal Code", "Country"}

var allFields = []Field{
	FieldName,
	FieldAge,
	FieldGender,
	FieldBirthdate,
	FieldAddress,
	FieldPhone,
	FieldEmail,
	FieldMedicalHistory,
	FieldDiagnosis,
	FieldPrescription,
	FieldAdditionalInfo,
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// Canonicalize maps a key as written by the model onto a known Field.
func Canonicalize(input string) (Field, bool) {
	if input == "" {
		return "", false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)

	synonyms := map[string]Field{
		"full name":         FieldName,
		"patient name":      FieldName,
		"patient":           FieldName,
		"sex":               FieldGender,
		"dob":               FieldBirthdate,
		"date of birth":     FieldBirthdate,
		"birth date":        FieldBirthdate,
		"phone number":      FieldPhone,
		"contact number":    FieldPhone,
		"email address":     FieldEmail,
		"history":           FieldMedicalHistory,
		"diagnoses":         FieldDiagnosis,
		"diagnosis summary": FieldDiagnosis,
		"prescriptions":     FieldPrescription,
		"medications":       FieldPrescription,
		"extra fields":      FieldAdditionalInfo,
		"additional info":   FieldAdditionalInfo,
		"other":             FieldAdditionalInfo,
	}

	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == strings.ToLower(string(f)) {
			return f, true
		}
	}

	return "", false
}
