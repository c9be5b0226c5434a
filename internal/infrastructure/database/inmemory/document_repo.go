// Package inmemory provides map-backed implementations of the persistence
// ports.  They back the API server when no database is configured and keep
// the comparison pipeline fully operational in degraded deployments.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageBounds converts a Pagination into slice bounds over n items.
func pageBounds(p common.Pagination, n int) (int, int) {
	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}

// DocumentRepository stores documents in process memory.
type DocumentRepository struct {
	mu   sync.RWMutex
	docs map[common.ID]*document.Document
}

// NewDocumentRepository constructs an empty repository.
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{docs: make(map[common.ID]*document.Document)}
}

// Create stores a new document.
func (r *DocumentRepository) Create(_ context.Context, doc *document.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[doc.ID]; exists {
		return errors.Newf(errors.ErrCodeConflict, "document %s already exists", doc.ID)
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

// GetByID returns the document or ErrCodeDocumentNotFound.
func (r *DocumentRepository) GetByID(_ context.Context, id common.ID) (*document.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", id)
	}
	cp := *doc
	return &cp, nil
}

// List returns documents newest first.
func (r *DocumentRepository) List(_ context.Context, p common.Pagination) ([]*document.Document, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*document.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		cp := *doc
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].UploadedAt.After(all[j].UploadedAt)
	})

	start, end := pageBounds(p, len(all))
	return all[start:end], int64(len(all)), nil
}

// Delete removes the document or returns ErrCodeDocumentNotFound.
func (r *DocumentRepository) Delete(_ context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", id)
	}
	delete(r.docs, id)
	return nil
}
