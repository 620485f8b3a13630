package ingestion_engine

import (
	"strings"
	"unicode"
)

// Normalize strips NUL bytes, collapses every whitespace run into a single
// space and trims the ends. It never fails; "" maps to "".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, "\x00", "")

	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
