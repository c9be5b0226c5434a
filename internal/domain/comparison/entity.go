package comparison

import (
	"time"

	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Comparison aggregate root
// ─────────────────────────────────────────────────────────────────────────────

// Status is the lifecycle state of a comparison request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// allowedTransitions defines the valid next states reachable from each
// status.  Transitions not listed are illegal and rejected by transition().
//
//	pending ──► running ──► completed
//	   │           │
//	   └───────────┴──► failed
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusRunning, StatusFailed},
	StatusRunning: {StatusCompleted, StatusFailed},
	// Terminal states: no outgoing transitions.
	StatusCompleted: {},
	StatusFailed:    {},
}

// Comparison tracks one document-pair analysis from request to completion.
type Comparison struct {
	ID          common.ID  `json:"id"`
	Document1ID common.ID  `json:"document1_id"`
	Document2ID common.ID  `json:"document2_id"`
	Status      Status     `json:"status"`
	Report      *Report    `json:"report,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewComparison creates a pending comparison between two stored documents.
func NewComparison(doc1ID, doc2ID common.ID) (*Comparison, error) {
	if err := doc1ID.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid document1 id")
	}
	if err := doc2ID.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid document2 id")
	}
	if doc1ID == doc2ID {
		return nil, errors.New(errors.ErrCodeSameDocument, "cannot compare a document with itself")
	}
	return &Comparison{
		ID:          common.NewID(),
		Document1ID: doc1ID,
		Document2ID: doc2ID,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (c *Comparison) transition(next Status) error {
	for _, allowed := range allowedTransitions[c.Status] {
		if allowed == next {
			c.Status = next
			return nil
		}
	}
	return errors.Newf(errors.ErrCodeConflict, "illegal comparison transition %s -> %s", c.Status, next)
}

// Start moves a pending comparison to running.
func (c *Comparison) Start() error {
	if err := c.transition(StatusRunning); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.StartedAt = &now
	return nil
}

// Complete attaches a finished report and moves the comparison to completed.
func (c *Comparison) Complete(report *Report) error {
	if report == nil {
		return errors.New(errors.ErrCodeValidation, "completed comparison requires a report")
	}
	if err := c.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.Report = report
	c.CompletedAt = &now
	return nil
}

// Fail moves the comparison to failed and records the failure cause.
func (c *Comparison) Fail(cause error) error {
	if err := c.transition(StatusFailed); err != nil {
		return err
	}
	now := time.Now().UTC()
	c.CompletedAt = &now
	if cause != nil {
		c.Error = cause.Error()
	}
	return nil
}

// Duration returns how long the comparison ran, or zero when it has not
// finished.
func (c *Comparison) Duration() time.Duration {
	if c.StartedAt == nil || c.CompletedAt == nil {
		return 0
	}
	return c.CompletedAt.Sub(*c.StartedAt)
}
