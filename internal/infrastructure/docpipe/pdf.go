package docpipe

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/turtacn/policylens/pkg/errors"
)

// extractPDF pulls text out of every page's content stream.  Pages are
// joined with blank lines so page boundaries act as paragraph breaks.
func extractPDF(data []byte) (string, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentExtractFailed, "read pdf")
	}

	var pages []string
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			continue
		}
		stream, err := io.ReadAll(r)
		if err != nil || len(stream) == 0 {
			continue
		}
		if text := textFromContentStream(stream); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", errors.New(errors.ErrCodeDocumentExtractFailed, "pdf contains no extractable text")
	}
	return strings.Join(pages, "\n\n"), nil
}

// pdfLiteralRe matches PDF string literals: (text here)
var pdfLiteralRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromContentStream walks the page's operator stream and assembles the
// text-showing operators into lines.  Td, TD, and T* move the text cursor to
// a new line; Tj, TJ, and ' show text.
func textFromContentStream(stream []byte) string {
	var sb strings.Builder

	for _, raw := range bytes.Split(stream, []byte{'\n'}) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeLiterals(&sb, line, false)
		case bytes.HasSuffix(line, []byte("'")):
			writeLiterals(&sb, line, true)
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return tidyPDFText(sb.String())
}

func writeLiterals(sb *strings.Builder, line []byte, newline bool) {
	for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
		text := decodePDFLiteral(m[1])
		if text == "" {
			continue
		}
		if newline && sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
}

// decodePDFLiteral resolves backslash escapes, including octal byte codes.
func decodePDFLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; {
		case c == 'n':
			sb.WriteByte('\n')
		case c == 'r':
			sb.WriteByte('\r')
		case c == 't':
			sb.WriteByte('\t')
		case c >= '0' && c <= '7':
			val := int(c - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// tidyPDFText collapses runs of spaces and tabs but keeps newlines, which
// downstream section detection depends on.
func tidyPDFText(text string) string {
	lines := strings.Split(normalizeLineEndings(text), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	joined := strings.Join(out, "\n")
	for strings.Contains(joined, "\n\n\n") {
		joined = strings.ReplaceAll(joined, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(joined)
}
