package comparison

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/pkg/errors"
)

// equalTextScorer scores 1.0 for identical inputs, 0.0 otherwise.
type equalTextScorer struct{}

func (equalTextScorer) Name() string { return "equal-text" }

func (equalTextScorer) Score(_ context.Context, texts1, texts2 []string) ([][]float64, error) {
	matrix := make([][]float64, len(texts1))
	for i := range texts1 {
		matrix[i] = make([]float64, len(texts2))
		for j := range texts2 {
			if texts1[i] == texts2[j] {
				matrix[i][j] = 1.0
			}
		}
	}
	return matrix, nil
}

// brokenScorer always fails.
type brokenScorer struct{}

func (brokenScorer) Name() string { return "broken" }

func (brokenScorer) Score(_ context.Context, _, _ []string) ([][]float64, error) {
	return nil, errors.New(errors.ErrCodeEmbeddingFailed, "no endpoint")
}

func policyText(clauses ...string) string {
	var b strings.Builder
	for i, clause := range clauses {
		b.WriteString("SECTION ")
		b.WriteString(string(rune('1' + i)))
		b.WriteString("\n")
		b.WriteString(clause)
		b.WriteString("\n")
	}
	return b.String()
}

func TestPipeline_IdenticalDocuments(t *testing.T) {
	clause := strings.Repeat("Employees must complete training every year without exception. ", 3)
	text := policyText(clause, clause+"second body ", clause+"third body ")

	p := NewPipeline(equalTextScorer{}, nil, nil)
	report := p.Run(context.Background(), text, text, "v1", "v2")

	require.NotNil(t, report)
	assert.False(t, report.Failed())
	stats := report.Statistics
	assert.Equal(t, stats.TotalSections, stats.Unchanged)
	assert.Zero(t, stats.Modified+stats.Added+stats.Removed)
	assert.Zero(t, stats.PercentChanged)
	assert.Empty(t, report.OverallChanges)
	assert.Contains(t, report.Summary, "identical or very similar")
}

func TestPipeline_FeeChangeExample(t *testing.T) {
	body := strings.Repeat("This clause covers the annual membership terms in detail. ", 3)
	old := policyText(body+"The fee is $10", body+"stable second clause", body+"stable third clause")
	new_ := policyText(body+"The fee is $20", body+"stable second clause", body+"stable third clause")

	p := NewPipeline(nil, nil, nil) // title-overlap scorer matches equal titles
	report := p.Run(context.Background(), old, new_, "old", "new")

	require.Equal(t, 3, report.Statistics.TotalSections)
	assert.Equal(t, 1, report.Statistics.Modified)
	assert.Equal(t, 2, report.Statistics.Unchanged)

	var modified *domain.SectionResult
	for i := range report.Sections {
		if report.Sections[i].ChangeType == domain.ChangeModified {
			modified = &report.Sections[i]
		}
	}
	require.NotNil(t, modified)
	assert.Contains(t, modified.DiffHTML, `<span class="diff-removed">$10</span>`)
	assert.Contains(t, modified.DiffHTML, `<span class="diff-added">$20</span>`)
}

func TestPipeline_AddedAndRemovedSections(t *testing.T) {
	shared := strings.Repeat("Shared clause text that matches across both versions exactly. ", 3)
	old := "SECTION 1\n" + shared + "\nSECTION 2\nOnly in the old version, stating obsolete reporting duties at length here.\n"
	new_ := "SECTION 1\n" + shared + "\nSECTION 3\nOnly in the new version, introducing a brand new escalation matrix entirely.\n"

	p := NewPipeline(equalTextScorer{}, nil, nil)
	report := p.Run(context.Background(), old, new_, "old", "new")

	assert.Equal(t, 1, report.Statistics.Removed)
	assert.Equal(t, 1, report.Statistics.Added)

	// Added forces medium impact, removed forces high; both rank as major.
	require.NotEmpty(t, report.OverallChanges)
	assert.Equal(t, domain.ChangeRemoved, report.OverallChanges[0].ChangeType)
	assert.Equal(t, domain.ImpactHigh, report.OverallChanges[0].ImpactLevel)
}

func TestPipeline_ScorerFailureDegradesButCompletes(t *testing.T) {
	body := strings.Repeat("Clause body with plenty of matching words in both copies. ", 3)
	text := policyText(body, body+"second ", body+"third ")

	p := NewPipeline(brokenScorer{}, nil, nil)
	report := p.Run(context.Background(), text, text, "a", "b")

	assert.False(t, report.Failed())
	assert.True(t, report.Degraded())

	found := false
	for _, d := range report.Metadata.Degradations {
		if d.Stage == domain.StageMatch {
			found = true
			assert.Contains(t, d.Reason, "broken")
		}
	}
	assert.True(t, found, "match degradation must be surfaced")

	// Identical titles still align through the fallback scorer.
	assert.Equal(t, report.Statistics.TotalSections, report.Statistics.Unchanged)
}

func TestPipeline_MetadataCarriesCapabilityKinds(t *testing.T) {
	p := NewPipeline(equalTextScorer{}, nil, nil)
	report := p.Run(context.Background(), "one short text", "another short text", "a", "b")

	assert.Equal(t, "equal-text", report.Metadata.ScorerKind)
	assert.Equal(t, "heuristic", report.Metadata.OracleKind)
	assert.False(t, report.Metadata.GeneratedAt.IsZero())
}

func TestPipeline_ParallelClassificationMatchesSerial(t *testing.T) {
	body := strings.Repeat("Detailed clause content used to compare serial and parallel runs. ", 3)
	old := policyText(body+"alpha", body+"beta", body+"gamma")
	new_ := policyText(body+"alpha", body+"beta changed", body+"gamma")

	serial := NewPipeline(nil, nil, nil, WithConcurrency(1)).
		Run(context.Background(), old, new_, "a", "b")
	parallel := NewPipeline(nil, nil, nil, WithConcurrency(4)).
		Run(context.Background(), old, new_, "a", "b")

	assert.Equal(t, serial.Statistics, parallel.Statistics)
	require.Equal(t, len(serial.Sections), len(parallel.Sections))
	for i := range serial.Sections {
		assert.Equal(t, serial.Sections[i].ChangeType, parallel.Sections[i].ChangeType)
		assert.Equal(t, serial.Sections[i].Title1, parallel.Sections[i].Title1)
	}
}
