package comparison

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

func newTestComparison(t *testing.T) *Comparison {
	t.Helper()
	c, err := NewComparison(common.NewID(), common.NewID())
	require.NoError(t, err)
	return c
}

func TestNewComparison_Valid(t *testing.T) {
	c := newTestComparison(t)

	assert.Equal(t, StatusPending, c.Status)
	assert.NoError(t, c.ID.Validate())
	assert.False(t, c.CreatedAt.IsZero())
	assert.Nil(t, c.Report)
}

func TestNewComparison_SameDocumentRejected(t *testing.T) {
	id := common.NewID()
	_, err := NewComparison(id, id)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeSameDocument, errors.GetCode(err))
}

func TestNewComparison_InvalidIDRejected(t *testing.T) {
	_, err := NewComparison("not-a-uuid", common.NewID())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
}

func TestComparison_Lifecycle(t *testing.T) {
	c := newTestComparison(t)

	require.NoError(t, c.Start())
	assert.Equal(t, StatusRunning, c.Status)
	require.NotNil(t, c.StartedAt)

	report := &Report{Statistics: Statistics{TotalSections: 3, Unchanged: 3}}
	require.NoError(t, c.Complete(report))
	assert.Equal(t, StatusCompleted, c.Status)
	assert.Same(t, report, c.Report)
	require.NotNil(t, c.CompletedAt)
	assert.GreaterOrEqual(t, c.Duration(), time.Duration(0))
}

func TestComparison_IllegalTransitions(t *testing.T) {
	c := newTestComparison(t)

	// Cannot complete before starting.
	err := c.Complete(&Report{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.GetCode(err))

	require.NoError(t, c.Start())
	require.NoError(t, c.Fail(assert.AnError))
	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, assert.AnError.Error(), c.Error)

	// Terminal state admits nothing.
	assert.Error(t, c.Start())
	assert.Error(t, c.Complete(&Report{}))
}

func TestComparison_CompleteRequiresReport(t *testing.T) {
	c := newTestComparison(t)
	require.NoError(t, c.Start())

	err := c.Complete(nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidation, errors.GetCode(err))
	// Status must be unharmed so the caller can still fail it.
	assert.Equal(t, StatusRunning, c.Status)
}

func TestMatchRecord_Validate(t *testing.T) {
	s1 := NewSection(0, "Scope", "This policy applies to all employees.")
	s2 := NewSection(0, "Scope", "This policy applies to all staff.")

	tests := []struct {
		name    string
		record  MatchRecord
		wantErr bool
	}{
		{
			name:   "matched with both sections",
			record: MatchRecord{Section1: &s1, Section2: &s2, Similarity: 0.9, MatchType: MatchMatched},
		},
		{
			name:   "added with only section2",
			record: MatchRecord{Section2: &s2, MatchType: MatchAdded},
		},
		{
			name:   "removed with only section1",
			record: MatchRecord{Section1: &s1, MatchType: MatchRemoved},
		},
		{
			name:    "matched missing section2",
			record:  MatchRecord{Section1: &s1, Similarity: 0.9, MatchType: MatchMatched},
			wantErr: true,
		},
		{
			name:    "added carrying section1",
			record:  MatchRecord{Section1: &s1, Section2: &s2, MatchType: MatchAdded},
			wantErr: true,
		},
		{
			name:    "similarity out of range",
			record:  MatchRecord{Section1: &s1, Section2: &s2, Similarity: 1.5, MatchType: MatchMatched},
			wantErr: true,
		},
		{
			name:    "unknown match type",
			record:  MatchRecord{Section1: &s1, MatchType: MatchType("merged")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImpactLevel_Ordinal(t *testing.T) {
	assert.Equal(t, 3, ImpactHigh.Ordinal())
	assert.Equal(t, 2, ImpactMedium.Ordinal())
	assert.Equal(t, 1, ImpactLow.Ordinal())
	assert.Equal(t, 0, ImpactUnknown.Ordinal())
	assert.Equal(t, 0, ImpactLevel("critical").Ordinal())
}

func TestSectionResult_Title(t *testing.T) {
	assert.Equal(t, "New", SectionResult{Title1: "Old", Title2: "New"}.Title())
	assert.Equal(t, "Old", SectionResult{Title1: "Old"}.Title())
}

func TestReport_DegradedAndFailed(t *testing.T) {
	r := &Report{}
	assert.False(t, r.Degraded())
	assert.False(t, r.Failed())

	r.Metadata.Degradations = append(r.Metadata.Degradations, Degradation{Stage: StageMatch, Reason: "scorer unavailable"})
	assert.True(t, r.Degraded())

	r.Statistics.Error = "aggregation fault"
	assert.True(t, r.Failed())
}

func TestNewCompletedEvent(t *testing.T) {
	c := newTestComparison(t)
	require.NoError(t, c.Start())
	require.NoError(t, c.Complete(&Report{
		Statistics: Statistics{TotalSections: 4, Unchanged: 1, Modified: 3, PercentChanged: 75.0},
	}))

	ev := NewCompletedEvent(c)
	assert.Equal(t, string(c.ID), ev.AggregateID())
	assert.Equal(t, 4, ev.TotalSections)
	assert.Equal(t, 75.0, ev.PercentChanged)
	assert.False(t, ev.Degraded)
	assert.NotEmpty(t, ev.EventID())
}
