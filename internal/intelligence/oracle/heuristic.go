package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/intelligence/worddiff"
)

// Word-delta thresholds for heuristic impact classification.
const (
	highImpactWordDelta   = 100
	mediumImpactWordDelta = 20
)

// categoryKeywords maps a keyword found in either text version to the change
// category it implies.  Checked in order; first hit wins.
var categoryKeywords = []struct {
	keyword  string
	category comparison.ChangeCategory
}{
	{"requirement", comparison.CategoryRequirements},
	{"definition", comparison.CategoryDefinitions},
	{"procedure", comparison.CategoryProcedural},
}

// Heuristic is a deterministic TextOracle built on word counts and line
// diffs.  It never fails and needs no external services.
type Heuristic struct{}

// NewHeuristic builds the heuristic oracle.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Name() string { return "heuristic" }

// Summarize describes the section by its word count and opening line.
func (h *Heuristic) Summarize(_ context.Context, text string, mode SummaryMode) (string, error) {
	wordCount := len(strings.Fields(text))
	firstLine := strings.SplitN(text, "\n", 2)[0]
	if len(firstLine) > 100 {
		firstLine = firstLine[:100]
	}

	switch mode {
	case ModeAdded:
		return fmt.Sprintf("New section added with %d words. Starts with: %s...", wordCount, firstLine), nil
	case ModeRemoved:
		return fmt.Sprintf("Section removed (%d words). Previously started with: %s...", wordCount, firstLine), nil
	default:
		return fmt.Sprintf("Section content (%d words). Starts with: %s...", wordCount, firstLine), nil
	}
}

// ExplainChange counts added and removed lines and reports the direction of
// the change.
func (h *Heuristic) ExplainChange(_ context.Context, oldText, newText string) (string, error) {
	if strings.TrimSpace(oldText) == strings.TrimSpace(newText) {
		return "No changes detected in this section.", nil
	}

	added, removed := worddiff.Stats(splitLines(oldText), splitLines(newText))

	var kind string
	switch {
	case added > removed:
		kind = "Content added"
	case removed > added:
		kind = "Content removed"
	default:
		kind = "Content modified"
	}
	return fmt.Sprintf("%s. Approximately %d lines added, %d lines removed.", kind, added, removed), nil
}

// ClassifyChange rates impact by the absolute word-count delta and picks a
// category from keyword occurrence in either version.
func (h *Heuristic) ClassifyChange(_ context.Context, oldText, newText string) (comparison.ImpactAnalysis, error) {
	oldWords := len(strings.Fields(oldText))
	newWords := len(strings.Fields(newText))
	delta := oldWords - newWords
	if delta < 0 {
		delta = -delta
	}

	level := comparison.ImpactLow
	switch {
	case delta > highImpactWordDelta:
		level = comparison.ImpactHigh
	case delta > mediumImpactWordDelta:
		level = comparison.ImpactMedium
	}

	category := comparison.CategoryOther
	combined := strings.ToLower(oldText) + " " + strings.ToLower(newText)
	for _, ck := range categoryKeywords {
		if strings.Contains(combined, ck.keyword) {
			category = ck.category
			break
		}
	}

	return comparison.ImpactAnalysis{
		ImpactLevel:       level,
		ChangeCategory:    category,
		StakeholderImpact: fmt.Sprintf("Text length changed by %d words, categorized as %s", delta, category),
	}, nil
}

// OverallSummary renders a deterministic executive summary from the
// statistics alone.
func (h *Heuristic) OverallSummary(_ context.Context, stats comparison.Statistics, major []comparison.MajorChange, doc1Title, doc2Title string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Comparison between %s and %s:\n\n", doc1Title, doc2Title)
	fmt.Fprintf(&b, "Total sections analyzed: %d\n", stats.TotalSections)
	fmt.Fprintf(&b, "- %d sections unchanged\n", stats.Unchanged)
	fmt.Fprintf(&b, "- %d sections modified\n", stats.Modified)
	fmt.Fprintf(&b, "- %d sections added\n", stats.Added)
	fmt.Fprintf(&b, "- %d sections removed\n\n", stats.Removed)

	changed := stats.Modified + stats.Added + stats.Removed
	if changed == 0 {
		b.WriteString("Documents appear to be identical or very similar.")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "Overall change rate: %.1f%%\n\n", stats.PercentChanged)
	if stats.Added > 0 {
		fmt.Fprintf(&b, "Notable additions detected in %d sections. ", stats.Added)
	}
	if stats.Removed > 0 {
		fmt.Fprintf(&b, "Content removed from %d sections. ", stats.Removed)
	}
	if stats.Modified > 0 {
		fmt.Fprintf(&b, "Modifications found in %d sections.", stats.Modified)
	}
	if len(major) > 0 {
		fmt.Fprintf(&b, "\n\nMost significant change: %s (%s, %s impact).",
			major[0].Title, major[0].ChangeType, major[0].ImpactLevel)
	}
	return strings.TrimSpace(b.String()), nil
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}
