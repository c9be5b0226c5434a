// Package document implements the Document bounded context: uploaded policy
// documents, their extracted plain text, and the persistence port they are
// stored through.
package document

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// DocType identifies the source file format of an uploaded document.
type DocType string

const (
	TypePDF  DocType = "pdf"
	TypeHTML DocType = "html"
	TypeText DocType = "txt"
)

// typeByExtension maps lowercase file extensions to document types.
var typeByExtension = map[string]DocType{
	".pdf":  TypePDF,
	".html": TypeHTML,
	".htm":  TypeHTML,
	".txt":  TypeText,
	".text": TypeText,
	".md":   TypeText,
}

// TypeForFilename resolves a document type from a file name, or an
// unsupported-type error for anything outside the accepted set.
func TypeForFilename(name string) (DocType, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if dt, ok := typeByExtension[ext]; ok {
		return dt, nil
	}
	return "", errors.Newf(errors.ErrCodeDocumentTypeUnsupported,
		"unsupported document type %q (accepted: pdf, html, txt)", ext)
}

// Document is an uploaded policy document.  Text holds the extracted plain
// text used by the comparison pipeline; StoragePath points at the raw upload
// in object storage when one was retained.
type Document struct {
	ID          common.ID `json:"id"`
	Filename    string    `json:"filename"`
	DocType     DocType   `json:"doc_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path,omitempty"`
	Text        string    `json:"-"`
	WordCount   int       `json:"word_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// NewDocument builds a Document from an upload once its plain text has been
// extracted.  The extracted text must be non-empty after trimming.
func NewDocument(filename string, size int64, text string) (*Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, errors.NewValidationError("filename", "must not be empty")
	}
	dt, err := TypeForFilename(filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.Newf(errors.ErrCodeDocumentEmpty,
			"document %q contains no extractable text", filename)
	}
	return &Document{
		ID:         common.NewID(),
		Filename:   filename,
		DocType:    dt,
		Size:       size,
		Text:       text,
		WordCount:  len(strings.Fields(text)),
		UploadedAt: time.Now().UTC(),
	}, nil
}
