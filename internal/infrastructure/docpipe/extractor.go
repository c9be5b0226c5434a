// Package docpipe turns uploaded policy files into the plain text the
// comparison pipeline consumes.  Plain text, HTML, and PDF sources are
// supported; extraction preserves line structure because downstream section
// detection is line-anchored.
package docpipe

import (
	"context"
	"io"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
)

// Extractor implements document.Extractor for all supported document types.
type Extractor struct {
	log logging.Logger
}

// New builds a text extractor.
func New(log logging.Logger) *Extractor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Extractor{log: log.Named("docpipe")}
}

// ExtractText reads the whole file and returns its plain text.
func (e *Extractor) ExtractText(ctx context.Context, r io.Reader, docType document.DocType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "read upload")
	}

	var text string
	switch docType {
	case document.TypeText:
		text = decodePlainText(data)
	case document.TypeHTML:
		text, err = extractHTML(data)
	case document.TypePDF:
		text, err = extractPDF(data)
	default:
		return "", errors.Newf(errors.ErrCodeDocumentTypeUnsupported,
			"no extractor for document type %q", docType)
	}
	if err != nil {
		return "", err
	}

	e.log.Debug("extracted document text",
		logging.String("doc_type", string(docType)),
		logging.Int("bytes_in", len(data)),
		logging.Int("chars_out", len(text)))
	return text, nil
}
