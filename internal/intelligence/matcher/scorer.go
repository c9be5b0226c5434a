package matcher

import (
	"context"
	"strings"
)

// SimilarityScorer is the pluggable capability computing pairwise closeness
// between two collections of texts.  The returned matrix must have
// len(texts1) rows and len(texts2) columns with every value in [0,1].
// Implementations may block for seconds (model inference, network); bounding
// latency is their responsibility, via the provided context.
type SimilarityScorer interface {
	// Name identifies the scorer implementation in report metadata.
	Name() string
	Score(ctx context.Context, texts1, texts2 []string) ([][]float64, error)
}

// TitleOverlapScorer is the deterministic fallback scorer: Jaccard overlap of
// lowercase word sets.  It never fails and needs no external services.
// Callers feed it section titles rather than full contents.
type TitleOverlapScorer struct{}

// NewTitleOverlapScorer builds the fallback scorer.
func NewTitleOverlapScorer() *TitleOverlapScorer {
	return &TitleOverlapScorer{}
}

func (s *TitleOverlapScorer) Name() string { return "title-overlap" }

// Score computes the Jaccard word-set overlap for every pair.
func (s *TitleOverlapScorer) Score(_ context.Context, texts1, texts2 []string) ([][]float64, error) {
	sets1 := make([]map[string]struct{}, len(texts1))
	for i, t := range texts1 {
		sets1[i] = wordSet(t)
	}
	sets2 := make([]map[string]struct{}, len(texts2))
	for j, t := range texts2 {
		sets2[j] = wordSet(t)
	}

	matrix := make([][]float64, len(texts1))
	for i := range texts1 {
		matrix[i] = make([]float64, len(texts2))
		for j := range texts2 {
			matrix[i][j] = jaccard(sets1[i], sets2[j])
		}
	}
	return matrix, nil
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
