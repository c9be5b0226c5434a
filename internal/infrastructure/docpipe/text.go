package docpipe

import (
	"strings"
	"unicode/utf8"
)

// decodePlainText interprets the upload as UTF-8, salvaging non-UTF-8 files
// by treating every byte as a Latin-1 code point.  Government archives still
// carry plenty of legacy-encoded plain text.
func decodePlainText(data []byte) string {
	if utf8.Valid(data) {
		return normalizeLineEndings(string(data))
	}

	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return normalizeLineEndings(sb.String())
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
