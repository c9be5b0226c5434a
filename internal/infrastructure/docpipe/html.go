package docpipe

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/turtacn/policylens/pkg/errors"
)

// blockAtoms are elements whose text starts on its own line.  Keeping block
// boundaries as newlines lets headings survive into section detection.
var blockAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Li: true, atom.Tr: true, atom.Br: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true,
	atom.Blockquote: true, atom.Pre: true,
}

// extractHTML parses the markup and returns visible text with one line per
// block element.  Script, style, and other non-content subtrees are dropped.
func extractHTML(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeDocumentExtractFailed, "parse html")
	}

	var lines []string
	var current strings.Builder

	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Iframe:
				return
			}
			if blockAtoms[n.DataAtom] {
				flush()
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if current.Len() > 0 {
					current.WriteByte(' ')
				}
				current.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
			flush()
		}
	}
	walk(doc)
	flush()

	return strings.Join(lines, "\n"), nil
}
