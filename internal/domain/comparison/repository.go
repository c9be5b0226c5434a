package comparison

import (
	"context"

	"github.com/turtacn/policylens/pkg/types/common"
)

// ListFilter narrows a comparison listing.
type ListFilter struct {
	DocumentID common.ID // match either side of the pair when set
	Status     Status
	Pagination common.Pagination
}

// Repository is the persistence port for Comparison aggregates.
type Repository interface {
	Create(ctx context.Context, c *Comparison) error
	Update(ctx context.Context, c *Comparison) error
	GetByID(ctx context.Context, id common.ID) (*Comparison, error)
	List(ctx context.Context, filter ListFilter) ([]*Comparison, int64, error)
	Delete(ctx context.Context, id common.ID) error
}

// ReportCache is the optional read-through cache port for completed reports.
// Implementations must treat a miss as a normal, non-error outcome.
type ReportCache interface {
	Get(ctx context.Context, comparisonID common.ID) (*Report, bool, error)
	Set(ctx context.Context, comparisonID common.ID, report *Report) error
	Invalidate(ctx context.Context, comparisonID common.ID) error
}
