package docpipe

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/pkg/errors"
)

func TestExtractText_PlainUTF8(t *testing.T) {
	e := New(nil)
	text, err := e.ExtractText(context.Background(), strings.NewReader("1. Purpose\r\nThis policy applies.\r\n"), document.TypeText)
	require.NoError(t, err)
	assert.Equal(t, "1. Purpose\nThis policy applies.\n", text)
}

func TestExtractText_Latin1Salvage(t *testing.T) {
	e := New(nil)
	// 0xE9 is é in Latin-1 and invalid as a standalone UTF-8 byte.
	text, err := e.ExtractText(context.Background(), strings.NewReader("r\xe9sum\xe9"), document.TypeText)
	require.NoError(t, err)
	assert.Equal(t, "résumé", text)
}

func TestExtractText_HTML(t *testing.T) {
	markup := `<html><head><title>Ignored</title><style>p { color: red }</style></head>
<body>
<h1>SECTION 1</h1>
<p>All <b>staff</b> must badge in.</p>
<script>alert("skip me")</script>
<ul><li>first</li><li>second</li></ul>
</body></html>`

	e := New(nil)
	text, err := e.ExtractText(context.Background(), strings.NewReader(markup), document.TypeHTML)
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Contains(t, lines, "SECTION 1")
	assert.Contains(t, lines, "All staff must badge in.")
	assert.Contains(t, lines, "first")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "Ignored")
}

func TestExtractText_HTMLHeadingOnOwnLine(t *testing.T) {
	e := New(nil)
	text, err := e.ExtractText(context.Background(),
		strings.NewReader("<p>before</p><h2>2. Scope</h2><p>after</p>"), document.TypeHTML)
	require.NoError(t, err)
	assert.Equal(t, "before\n2. Scope\nafter", text)
}

func TestExtractText_UnsupportedType(t *testing.T) {
	e := New(nil)
	_, err := e.ExtractText(context.Background(), strings.NewReader("x"), document.DocType("docx"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocumentTypeUnsupported, errors.GetCode(err))
}

func TestExtractText_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(nil)
	_, err := e.ExtractText(ctx, strings.NewReader("x"), document.TypeText)
	assert.Error(t, err)
}

func TestExtractText_InvalidPDF(t *testing.T) {
	e := New(nil)
	_, err := e.ExtractText(context.Background(), strings.NewReader("not a pdf"), document.TypePDF)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocumentExtractFailed, errors.GetCode(err))
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n72 720 Td\n(SECTION 1) Tj\nT*\n(All staff must) Tj\n( badge in.) Tj\nET\n")
	text := textFromContentStream(stream)
	assert.Equal(t, "SECTION 1\nAll staff must badge in.", text)
}

func TestTextFromContentStream_TJArrayAndEscapes(t *testing.T) {
	stream := []byte("[(Fee: \\(USD\\)) -250 (10)] TJ\n")
	assert.Equal(t, "Fee: (USD)10", textFromContentStream(stream))
}

func TestDecodePDFLiteral_Octal(t *testing.T) {
	assert.Equal(t, " A", decodePDFLiteral([]byte(`\040A`)))
	assert.Equal(t, "line\nnext", decodePDFLiteral([]byte(`line\nnext`)))
}
