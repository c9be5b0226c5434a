package oracle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/domain/comparison"
)

func TestHeuristic_Summarize(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	added, err := h.Summarize(ctx, "All staff must badge in.\nMore text.", ModeAdded)
	require.NoError(t, err)
	assert.Contains(t, added, "New section added with 7 words")
	assert.Contains(t, added, "All staff must badge in.")

	removed, err := h.Summarize(ctx, "old clause", ModeRemoved)
	require.NoError(t, err)
	assert.Contains(t, removed, "Section removed (2 words)")

	neutral, err := h.Summarize(ctx, "plain clause", ModeNeutral)
	require.NoError(t, err)
	assert.Contains(t, neutral, "Section content (2 words)")
}

func TestHeuristic_Summarize_LongFirstLineTruncated(t *testing.T) {
	h := NewHeuristic()
	long := strings.Repeat("x", 200)

	out, err := h.Summarize(context.Background(), long, ModeAdded)
	require.NoError(t, err)
	assert.NotContains(t, out, strings.Repeat("x", 101))
}

func TestHeuristic_ExplainChange(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	same, err := h.ExplainChange(ctx, "  text \n", "text")
	require.NoError(t, err)
	assert.Equal(t, "No changes detected in this section.", same)

	grown, err := h.ExplainChange(ctx, "line one", "line one\nline two\nline three")
	require.NoError(t, err)
	assert.Contains(t, grown, "Content added")
	assert.Contains(t, grown, "2 lines added, 0 lines removed")

	shrunk, err := h.ExplainChange(ctx, "line one\nline two", "line one")
	require.NoError(t, err)
	assert.Contains(t, shrunk, "Content removed")

	swapped, err := h.ExplainChange(ctx, "line alpha", "line beta")
	require.NoError(t, err)
	assert.Contains(t, swapped, "Content modified")
}

func TestHeuristic_ClassifyChange_ImpactLevels(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	tests := []struct {
		name      string
		oldText   string
		newText   string
		wantLevel comparison.ImpactLevel
	}{
		{"small delta is low", "a b c", "a b c d", comparison.ImpactLow},
		{"over 20 words is medium", "base", "base "+strings.Repeat("w ", 25), comparison.ImpactMedium},
		{"over 100 words is high", "base", "base "+strings.Repeat("w ", 120), comparison.ImpactHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.ClassifyChange(ctx, tt.oldText, tt.newText)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, got.ImpactLevel)
			assert.NotEmpty(t, got.StakeholderImpact)
		})
	}
}

func TestHeuristic_ClassifyChange_Categories(t *testing.T) {
	h := NewHeuristic()
	ctx := context.Background()

	tests := []struct {
		text string
		want comparison.ChangeCategory
	}{
		{"the requirement applies", comparison.CategoryRequirements},
		{"see the definition of term", comparison.CategoryDefinitions},
		{"follow this procedure exactly", comparison.CategoryProcedural},
		{"nothing special here", comparison.CategoryOther},
		// Requirement outranks later keywords when both appear.
		{"the requirement and the procedure", comparison.CategoryRequirements},
	}

	for _, tt := range tests {
		got, err := h.ClassifyChange(ctx, tt.text, "other side")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.ChangeCategory, tt.text)
	}
}

func TestHeuristic_OverallSummary(t *testing.T) {
	h := NewHeuristic()

	stats := comparison.Statistics{
		TotalSections: 10, Unchanged: 6, Modified: 2, Added: 1, Removed: 1,
		PercentChanged: 40.0,
	}
	major := []comparison.MajorChange{
		{Title: "Enforcement", ChangeType: comparison.ChangeRemoved, ImpactLevel: comparison.ImpactHigh},
	}

	out, err := h.OverallSummary(context.Background(), stats, major, "Policy v1", "Policy v2")
	require.NoError(t, err)
	assert.Contains(t, out, "Comparison between Policy v1 and Policy v2")
	assert.Contains(t, out, "Total sections analyzed: 10")
	assert.Contains(t, out, "Overall change rate: 40.0%")
	assert.Contains(t, out, "Most significant change: Enforcement")
}

func TestHeuristic_OverallSummary_NoChanges(t *testing.T) {
	h := NewHeuristic()

	out, err := h.OverallSummary(context.Background(),
		comparison.Statistics{TotalSections: 3, Unchanged: 3}, nil, "a", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "identical or very similar")
}
