package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Inspection records whether a structured reply parsed as JSON and, if so,
// where it departs from the advisory schema. It never blocks a result.
type Inspection struct {
	ValidJSON    bool     `json:"json_valid"`
	SchemaIssues []string `json:"schema_issues,omitempty"`
}

func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// Inspect parses raw and checks it against BuildPatientJSONSchema.
func Inspect(raw string) Inspection {
	if !json.Valid([]byte(raw)) {
		return Inspection{ValidJSON: false}
	}
	ins := Inspection{ValidJSON: true}
	err := ValidateJSONAgainstSchema(BuildPatientJSONSchema(), []byte(raw))
	if err == nil {
		return ins
	}
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		ins.SchemaIssues = leafIssues(ve)
	}
	if len(ins.SchemaIssues) == 0 {
		ins.SchemaIssues = []string{err.Error()}
	}
	return ins
}

func leafIssues(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + ve.Message}
	}
	var out []string
	for _, c := range ve.Causes {
		out = append(out, leafIssues(c)...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
