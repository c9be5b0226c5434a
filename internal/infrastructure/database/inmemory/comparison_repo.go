package inmemory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// ComparisonRepository stores comparisons in process memory.
type ComparisonRepository struct {
	mu          sync.RWMutex
	comparisons map[common.ID]*domain.Comparison
}

// NewComparisonRepository constructs an empty repository.
func NewComparisonRepository() *ComparisonRepository {
	return &ComparisonRepository{comparisons: make(map[common.ID]*domain.Comparison)}
}

// Create stores a new comparison.
func (r *ComparisonRepository) Create(_ context.Context, c *domain.Comparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.comparisons[c.ID]; exists {
		return errors.Newf(errors.ErrCodeConflict, "comparison %s already exists", c.ID)
	}
	cp := *c
	r.comparisons[c.ID] = &cp
	return nil
}

// Update replaces a stored comparison.
func (r *ComparisonRepository) Update(_ context.Context, c *domain.Comparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comparisons[c.ID]; !ok {
		return errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", c.ID)
	}
	cp := *c
	r.comparisons[c.ID] = &cp
	return nil
}

// GetByID returns the comparison or ErrCodeComparisonNotFound.
func (r *ComparisonRepository) GetByID(_ context.Context, id common.ID) (*domain.Comparison, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comparisons[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", id)
	}
	cp := *c
	return &cp, nil
}

// List returns comparisons matching the filter, newest first.
func (r *ComparisonRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Comparison, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Comparison, 0, len(r.comparisons))
	for _, c := range r.comparisons {
		if filter.DocumentID != "" && c.Document1ID != filter.DocumentID && c.Document2ID != filter.DocumentID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	start, end := pageBounds(filter.Pagination, len(matched))
	return matched[start:end], int64(len(matched)), nil
}

// Delete removes the comparison or returns ErrCodeComparisonNotFound.
func (r *ComparisonRepository) Delete(_ context.Context, id common.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comparisons[id]; !ok {
		return errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", id)
	}
	delete(r.comparisons, id)
	return nil
}
