// Package ocr turns image bytes into text. Engines are interchangeable: a local
// Tesseract CLI, the Azure Read API, or an in-process cgo binding.
package ocr

import (
	"context"
	"strings"
)

// DefaultLanguage is used when neither the request nor the configuration names one.
const DefaultLanguage = "eng"

// Engine is the OCR backend capability: image bytes plus language hints in, text out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, langs []string) (string, error)
}

// JoinLanguages lowercases, deduplicates and joins codes with "+".
// When langs is empty the fallback list is used, then DefaultLanguage.
func JoinLanguages(langs []string, fallback []string) string {
	return strings.Join(ResolveLanguages(langs, fallback), "+")
}

// ResolveLanguages is JoinLanguages without the join.
func ResolveLanguages(langs []string, fallback []string) []string {
	out := clean(langs)
	if len(out) == 0 {
		out = clean(fallback)
	}
	if len(out) == 0 {
		out = []string{DefaultLanguage}
	}
	return out
}

func clean(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, l := range in {
		for _, part := range strings.Split(l, "+") {
			p := strings.ToLower(strings.TrimSpace(part))
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
