package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/pkg/errors"
)

func TestTypeForFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     DocType
		wantErr  bool
	}{
		{"policy.pdf", TypePDF, false},
		{"POLICY.PDF", TypePDF, false},
		{"page.html", TypeHTML, false},
		{"page.htm", TypeHTML, false},
		{"notes.txt", TypeText, false},
		{"readme.md", TypeText, false},
		{"archive.zip", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := TypeForFilename(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeDocumentTypeUnsupported, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDocument_Valid(t *testing.T) {
	doc, err := NewDocument("hr-policy.txt", 42, "All employees must complete annual training.")
	require.NoError(t, err)

	assert.NoError(t, doc.ID.Validate())
	assert.Equal(t, TypeText, doc.DocType)
	assert.Equal(t, int64(42), doc.Size)
	assert.Equal(t, 7, doc.WordCount)
	assert.False(t, doc.UploadedAt.IsZero())
}

func TestNewDocument_EmptyTextRejected(t *testing.T) {
	_, err := NewDocument("hr-policy.txt", 3, "  \n\t ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDocumentEmpty, errors.GetCode(err))
}

func TestNewDocument_EmptyFilenameRejected(t *testing.T) {
	_, err := NewDocument("", 3, "text")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
}
