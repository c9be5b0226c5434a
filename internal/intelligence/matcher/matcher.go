// Package matcher aligns sections across two document versions.  Matching is
// greedy and order-dependent: each section of the first document claims the
// best still-unclaimed section of the second whose similarity strictly
// exceeds the threshold, first come first served.  A later section cannot
// steal back a better match from an earlier one; this trades optimality for
// simplicity and determinism.
package matcher

import (
	"context"
	"fmt"

	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
)

// MinSimilarity is the threshold a pair must strictly exceed to be matched.
// It applies to the primary and the fallback scorer alike.
const MinSimilarity = 0.3

// Matcher aligns two section lists using an injected similarity scorer.
// A Matcher is stateless and safe for concurrent use; the used-index set is
// local to each Match call.
type Matcher struct {
	scorer   SimilarityScorer
	fallback SimilarityScorer
	log      logging.Logger
}

// New builds a Matcher around the given primary scorer.  When scorer is nil
// the title-overlap fallback serves as the primary.
func New(scorer SimilarityScorer, log logging.Logger) *Matcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	fallback := NewTitleOverlapScorer()
	if scorer == nil {
		scorer = fallback
	}
	return &Matcher{scorer: scorer, fallback: fallback, log: log.Named("matcher")}
}

// ScorerName reports which scorer the matcher was built with.
func (m *Matcher) ScorerName() string { return m.scorer.Name() }

// Match produces a complete partition of both inputs into matched, removed,
// and added records.  It never fails: a scorer error downgrades the whole
// call to the title-overlap fallback, reported via the returned Degradation
// (nil when the primary scorer served the call).
func (m *Matcher) Match(ctx context.Context, sections1, sections2 []comparison.Section) ([]comparison.MatchRecord, *comparison.Degradation) {
	if len(sections1) == 0 && len(sections2) == 0 {
		return nil, nil
	}

	matrix, err := m.primaryMatrix(ctx, sections1, sections2)
	if err == nil {
		return greedyMatch(sections1, sections2, matrix), nil
	}

	m.log.Warn("similarity scoring failed, downgrading to title overlap",
		logging.String("scorer", m.scorer.Name()), logging.Err(err))

	matrix, fbErr := m.fallback.Score(ctx, titles(sections1), titles(sections2))
	if fbErr != nil || matrixShapeError(matrix, len(sections1), len(sections2)) != nil {
		// The fallback cannot fail in practice; guard the invariant anyway
		// with an all-zero matrix so every section still lands in a record.
		matrix = zeroMatrix(len(sections1), len(sections2))
	}

	return greedyMatch(sections1, sections2, matrix), &comparison.Degradation{
		Stage:  comparison.StageMatch,
		Reason: fmt.Sprintf("scorer %s failed: %v", m.scorer.Name(), err),
	}
}

// primaryMatrix scores full section texts (title plus content) with the
// primary scorer and validates the matrix shape.
func (m *Matcher) primaryMatrix(ctx context.Context, sections1, sections2 []comparison.Section) ([][]float64, error) {
	if m.scorer == m.fallback {
		// Primary IS the fallback: score titles, its intended input.
		return m.fallback.Score(ctx, titles(sections1), titles(sections2))
	}

	matrix, err := m.scorer.Score(ctx, fullTexts(sections1), fullTexts(sections2))
	if err != nil {
		return nil, err
	}
	if err := matrixShapeError(matrix, len(sections1), len(sections2)); err != nil {
		return nil, err
	}
	return matrix, nil
}

// greedyMatch walks sections1 in order, claiming unused sections2 above the
// threshold, then emits added records for everything in sections2 never
// claimed.  Similarities are clamped into [0,1].
func greedyMatch(sections1, sections2 []comparison.Section, matrix [][]float64) []comparison.MatchRecord {
	records := make([]comparison.MatchRecord, 0, len(sections1)+len(sections2))
	used := make(map[int]bool, len(sections2))

	for i := range sections1 {
		bestIdx := -1
		bestSim := MinSimilarity

		for j := range sections2 {
			if used[j] {
				continue
			}
			if sim := clamp01(matrix[i][j]); sim > bestSim {
				bestSim = sim
				bestIdx = j
			}
		}

		if bestIdx >= 0 {
			used[bestIdx] = true
			records = append(records, comparison.MatchRecord{
				Section1:   &sections1[i],
				Section2:   &sections2[bestIdx],
				Similarity: bestSim,
				MatchType:  comparison.MatchMatched,
			})
		} else {
			records = append(records, comparison.MatchRecord{
				Section1:  &sections1[i],
				MatchType: comparison.MatchRemoved,
			})
		}
	}

	for j := range sections2 {
		if !used[j] {
			records = append(records, comparison.MatchRecord{
				Section2:  &sections2[j],
				MatchType: comparison.MatchAdded,
			})
		}
	}

	return records
}

// matrixShapeError verifies the scorer honored its contract.
func matrixShapeError(matrix [][]float64, rows, cols int) error {
	if len(matrix) != rows {
		return fmt.Errorf("similarity matrix has %d rows, want %d", len(matrix), rows)
	}
	for i, row := range matrix {
		if len(row) != cols {
			return fmt.Errorf("similarity matrix row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return nil
}

func zeroMatrix(rows, cols int) [][]float64 {
	matrix := make([][]float64, rows)
	for i := range matrix {
		matrix[i] = make([]float64, cols)
	}
	return matrix
}

func fullTexts(sections []comparison.Section) []string {
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Title + " " + s.Content
	}
	return texts
}

func titles(sections []comparison.Section) []string {
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Title
	}
	return texts
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
