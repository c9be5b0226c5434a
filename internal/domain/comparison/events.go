package comparison

import (
	"github.com/turtacn/policylens/pkg/types/common"
)

// Event topics published by the comparison context.
const (
	TopicComparisonCompleted = "comparison.completed"
	TopicComparisonFailed    = "comparison.failed"
)

// CompletedEvent is published when a comparison finishes successfully.
type CompletedEvent struct {
	common.BaseEvent

	Document1ID    common.ID `json:"document1_id"`
	Document2ID    common.ID `json:"document2_id"`
	TotalSections  int       `json:"total_sections"`
	PercentChanged float64   `json:"percent_changed"`
	Degraded       bool      `json:"degraded"`
}

// NewCompletedEvent builds a CompletedEvent from a completed comparison.
// The comparison must carry a report.
func NewCompletedEvent(c *Comparison) CompletedEvent {
	ev := CompletedEvent{
		BaseEvent:   common.NewBaseEvent(string(c.ID)),
		Document1ID: c.Document1ID,
		Document2ID: c.Document2ID,
	}
	if c.Report != nil {
		ev.TotalSections = c.Report.Statistics.TotalSections
		ev.PercentChanged = c.Report.Statistics.PercentChanged
		ev.Degraded = c.Report.Degraded()
	}
	return ev
}

// FailedEvent is published when a comparison terminates with an error.
type FailedEvent struct {
	common.BaseEvent

	Document1ID common.ID `json:"document1_id"`
	Document2ID common.ID `json:"document2_id"`
	Reason      string    `json:"reason"`
}

// NewFailedEvent builds a FailedEvent from a failed comparison.
func NewFailedEvent(c *Comparison) FailedEvent {
	return FailedEvent{
		BaseEvent:   common.NewBaseEvent(string(c.ID)),
		Document1ID: c.Document1ID,
		Document2ID: c.Document2ID,
		Reason:      c.Error,
	}
}
