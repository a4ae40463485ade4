package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// Row is one field/value pair of a report.
type Row struct {
	Field string
	Value string
}

var invalidJSONRows = []Row{{Field: "Error", Value: "Invalid JSON data"}}

// ParseRows decodes content as JSON and flattens it into sorted rows. Nested
// objects become dotted keys (Address.City); arrays are joined with ", ".
// ok is false when content is not JSON.
func ParseRows(content string) (rows []Row, ok bool) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}

	m, isObj := v.(map[string]any)
	if !isObj {
		return []Row{{Field: "Value", Value: scalar(v)}}, true
	}
	flatten("", m, &rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Field < rows[j].Field })
	return rows, true
}

// RowsOrFallback is ParseRows with the {"Error": "Invalid JSON data"} sentinel on failure.
func RowsOrFallback(content string) []Row {
	rows, ok := ParseRows(content)
	if !ok {
		return invalidJSONRows
	}
	return rows
}

func flatten(prefix string, m map[string]any, out *[]Row) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			flatten(key, child, out)
			continue
		}
		*out = append(*out, Row{Field: key, Value: scalar(v)})
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, scalar(e))
		}
		return strings.Join(parts, ", ")
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(t)
		return strings.TrimSpace(buf.String())
	}
}

// DiagnosisSummary returns the Diagnosis value of content, matching the key
// through constants.Canonicalize, or "" if there is none.
func DiagnosisSummary(content string) string {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if f, ok := constants.Canonicalize(k); ok && f == constants.FieldDiagnosis {
			if s := strings.TrimSpace(scalar(m[k])); s != "" {
				return s
			}
		}
	}
	return ""
}
