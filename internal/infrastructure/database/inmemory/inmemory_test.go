package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

func newDoc(t *testing.T, filename string) *document.Document {
	t.Helper()
	doc, err := document.NewDocument(filename, 10, "some policy text here")
	require.NoError(t, err)
	return doc
}

func TestDocumentRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()

	doc := newDoc(t, "policy.txt")
	require.NoError(t, repo.Create(ctx, doc))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "policy.txt", got.Filename)

	// Stored copy is isolated from caller mutation.
	got.Filename = "mutated"
	again, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "policy.txt", again.Filename)

	require.NoError(t, repo.Delete(ctx, doc.ID))
	_, err = repo.GetByID(ctx, doc.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentNotFound))
}

func TestDocumentRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()

	doc := newDoc(t, "a.txt")
	require.NoError(t, repo.Create(ctx, doc))
	err := repo.Create(ctx, doc)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
}

func TestDocumentRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()

	older := newDoc(t, "older.txt")
	older.UploadedAt = time.Now().Add(-time.Hour)
	newer := newDoc(t, "newer.txt")
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	docs, total, err := repo.List(ctx, common.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, docs, 2)
	assert.Equal(t, "newer.txt", docs[0].Filename)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name       string
		p          common.Pagination
		n          int
		start, end int
	}{
		{"defaults", common.Pagination{}, 5, 0, 5},
		{"second page", common.Pagination{Page: 2, PageSize: 2}, 5, 2, 4},
		{"past the end", common.Pagination{Page: 9, PageSize: 10}, 5, 5, 5},
		{"size capped", common.Pagination{Page: 1, PageSize: 500}, 120, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.p, tt.n)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestComparisonRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewComparisonRepository()

	c, err := domain.NewComparison(common.NewID(), common.NewID())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, c.Start())
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeComparisonNotFound))
}

func TestComparisonRepository_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewComparisonRepository()

	c, err := domain.NewComparison(common.NewID(), common.NewID())
	require.NoError(t, err)
	err = repo.Update(ctx, c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeComparisonNotFound))
}

func TestComparisonRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewComparisonRepository()

	docID := common.NewID()
	c1, err := domain.NewComparison(docID, common.NewID())
	require.NoError(t, err)
	c2, err := domain.NewComparison(common.NewID(), docID)
	require.NoError(t, err)
	c3, err := domain.NewComparison(common.NewID(), common.NewID())
	require.NoError(t, err)
	for _, c := range []*domain.Comparison{c1, c2, c3} {
		require.NoError(t, repo.Create(ctx, c))
	}
	require.NoError(t, c3.Start())
	require.NoError(t, repo.Update(ctx, c3))

	// Document filter matches either side of the pair.
	byDoc, total, err := repo.List(ctx, domain.ListFilter{DocumentID: docID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byDoc, 2)

	byStatus, total, err := repo.List(ctx, domain.ListFilter{Status: domain.StatusRunning})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, c3.ID, byStatus[0].ID)
}
