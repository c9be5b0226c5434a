// Package oracle defines the text-oracle capability consumed by the change
// classifier: a pluggable analyzer that summarizes, explains, and classifies
// textual change.  The package also ships Heuristic, a deterministic
// implementation that needs no external services and doubles as the fallback
// when a language-model oracle is unavailable.
package oracle

import (
	"context"

	"github.com/turtacn/policylens/internal/domain/comparison"
)

// SummaryMode tells the oracle why a section is being summarized.
type SummaryMode string

const (
	ModeAdded   SummaryMode = "added"
	ModeRemoved SummaryMode = "removed"
	ModeNeutral SummaryMode = "neutral"
)

// TextOracle analyzes policy text changes.  Implementations may block on
// network or model inference; callers bound latency through ctx.  Any method
// may fail, and callers must substitute labeled placeholders rather than
// propagate the error.
type TextOracle interface {
	// Name identifies the oracle implementation in report metadata.
	Name() string

	// Summarize produces a 1-2 sentence summary of one section.
	Summarize(ctx context.Context, text string, mode SummaryMode) (string, error)

	// ExplainChange produces a plain-language account of what changed
	// between two versions of a section.
	ExplainChange(ctx context.Context, oldText, newText string) (string, error)

	// ClassifyChange assigns an impact level, change category, and
	// stakeholder-impact note to a modification.
	ClassifyChange(ctx context.Context, oldText, newText string) (comparison.ImpactAnalysis, error)

	// OverallSummary produces an executive summary of a whole comparison.
	OverallSummary(ctx context.Context, stats comparison.Statistics, major []comparison.MajorChange, doc1Title, doc2Title string) (string, error)
}
