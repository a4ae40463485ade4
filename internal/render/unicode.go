package render

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Unicode policies for text the PDF core fonts cannot encode.
const (
	PolicyReplace = "replace"
	PolicyIgnore  = "ignore"
)

// ApplyUnicodePolicy keeps runes that exist in Windows-1252 (the encoding of
// the PDF core fonts) and replaces the rest with '?' or drops them. Carriage
// returns are dropped under either policy.
func ApplyUnicodePolicy(s, policy string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); ok && r >= 0x20 {
			b.WriteRune(r)
			continue
		}
		if policy == PolicyIgnore {
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// splitLines splits on LF, CRLF or a lone CR.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.ReplaceAll(s, "\r", "\n"), "\n")
}
