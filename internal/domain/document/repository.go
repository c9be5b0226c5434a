package document

import (
	"context"
	"io"

	"github.com/turtacn/policylens/pkg/types/common"
)

// Repository is the persistence port for Document entities.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id common.ID) (*Document, error)
	List(ctx context.Context, p common.Pagination) ([]*Document, int64, error)
	Delete(ctx context.Context, id common.ID) error
}

// BlobStore is the object-storage port for raw uploaded files.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// Extractor turns a raw uploaded file into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, r io.Reader, docType DocType) (string, error)
}
