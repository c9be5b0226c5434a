package llm

import (
	"context"

	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/intelligence/matcher"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
)

// CallRecorder receives one observation per model call.  The prometheus
// Metrics type satisfies it.
type CallRecorder interface {
	RecordOracleCall(operation string, err error)
	RecordScorerCall(err error)
}

// MeasuredScorer decorates a similarity scorer with per-call accounting.
type MeasuredScorer struct {
	inner matcher.SimilarityScorer
	rec   CallRecorder
}

// NewMeasuredScorer wraps inner so every Score call is recorded on rec.
func NewMeasuredScorer(inner matcher.SimilarityScorer, rec CallRecorder) *MeasuredScorer {
	return &MeasuredScorer{inner: inner, rec: rec}
}

func (s *MeasuredScorer) Name() string { return s.inner.Name() }

func (s *MeasuredScorer) Score(ctx context.Context, texts1, texts2 []string) ([][]float64, error) {
	matrix, err := s.inner.Score(ctx, texts1, texts2)
	s.rec.RecordScorerCall(err)
	return matrix, err
}

// MeasuredOracle decorates a text oracle with per-operation accounting.
type MeasuredOracle struct {
	inner oracle.TextOracle
	rec   CallRecorder
}

// NewMeasuredOracle wraps inner so every oracle call is recorded on rec,
// labeled by operation.
func NewMeasuredOracle(inner oracle.TextOracle, rec CallRecorder) *MeasuredOracle {
	return &MeasuredOracle{inner: inner, rec: rec}
}

func (o *MeasuredOracle) Name() string { return o.inner.Name() }

func (o *MeasuredOracle) Summarize(ctx context.Context, text string, mode oracle.SummaryMode) (string, error) {
	out, err := o.inner.Summarize(ctx, text, mode)
	o.rec.RecordOracleCall("summarize", err)
	return out, err
}

func (o *MeasuredOracle) ExplainChange(ctx context.Context, oldText, newText string) (string, error) {
	out, err := o.inner.ExplainChange(ctx, oldText, newText)
	o.rec.RecordOracleCall("explain", err)
	return out, err
}

func (o *MeasuredOracle) ClassifyChange(ctx context.Context, oldText, newText string) (comparison.ImpactAnalysis, error) {
	analysis, err := o.inner.ClassifyChange(ctx, oldText, newText)
	o.rec.RecordOracleCall("classify", err)
	return analysis, err
}

func (o *MeasuredOracle) OverallSummary(ctx context.Context, stats comparison.Statistics, major []comparison.MajorChange, doc1Title, doc2Title string) (string, error) {
	out, err := o.inner.OverallSummary(ctx, stats, major, doc1Title, doc2Title)
	o.rec.RecordOracleCall("overall_summary", err)
	return out, err
}
