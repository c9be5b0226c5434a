package comparison

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/internal/intelligence/classifier"
	"github.com/turtacn/policylens/internal/intelligence/matcher"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
	"github.com/turtacn/policylens/internal/intelligence/segmenter"
)

// StageObserver receives the wall-clock duration of each pipeline stage.
// Implemented by the Prometheus collector; nil observers are ignored.
type StageObserver interface {
	ObserveStage(stage string, d time.Duration)
}

// Pipeline runs one full comparison: segment both texts, align the sections,
// classify every pair, and aggregate the report.  Capabilities are injected
// at construction; the pipeline itself holds no mutable state and is safe
// for concurrent use.
type Pipeline struct {
	segmenter   *segmenter.Segmenter
	matcher     *matcher.Matcher
	classifier  *classifier.Classifier
	oracle      oracle.TextOracle
	concurrency int
	observer    StageObserver
	log         logging.Logger
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithConcurrency bounds parallel classification calls.  Values below 1
// disable parallelism.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithStageObserver registers a metrics observer for stage durations.
func WithStageObserver(obs StageObserver) PipelineOption {
	return func(p *Pipeline) { p.observer = obs }
}

// NewPipeline wires the comparison pipeline.  scorer and textOracle may be
// nil, in which case the deterministic fallbacks serve the whole pipeline.
func NewPipeline(scorer matcher.SimilarityScorer, textOracle oracle.TextOracle, log logging.Logger, opts ...PipelineOption) *Pipeline {
	if textOracle == nil {
		textOracle = oracle.NewHeuristic()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	p := &Pipeline{
		segmenter:   segmenter.New(log),
		matcher:     matcher.New(scorer, log),
		classifier:  classifier.New(textOracle, log),
		oracle:      textOracle,
		concurrency: 1,
		log:         log.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run compares two extracted plain-text documents and returns the report.
// It never fails; every internal fault degrades per stage and the
// degradations are surfaced in the report metadata.
func (p *Pipeline) Run(ctx context.Context, text1, text2, doc1Title, doc2Title string) *domain.Report {
	started := time.Now()
	var degradations []domain.Degradation

	// Extraction.
	extractStart := time.Now()
	sections1, deg1 := p.segmenter.Extract(text1)
	sections2, deg2 := p.segmenter.Extract(text2)
	p.observe("extract", extractStart)
	if deg1 != nil {
		degradations = append(degradations, *deg1)
	}
	if deg2 != nil {
		degradations = append(degradations, *deg2)
	}

	// Matching.
	matchStart := time.Now()
	records, matchDeg := p.matcher.Match(ctx, sections1, sections2)
	p.observe("match", matchStart)
	if matchDeg != nil {
		degradations = append(degradations, *matchDeg)
	}

	// Classification, optionally in parallel: each record is classified from
	// disjoint inputs with no shared mutable state.
	classifyStart := time.Now()
	results := make([]domain.SectionResult, len(records))
	classifyDegs := make([]*domain.Degradation, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range records {
		i := i
		g.Go(func() error {
			results[i], classifyDegs[i] = p.classifier.Classify(gctx, records[i])
			return nil
		})
	}
	_ = g.Wait() // classification never returns errors
	p.observe("classify", classifyStart)

	for _, d := range classifyDegs {
		if d != nil {
			degradations = append(degradations, *d)
		}
	}

	// Aggregation.
	aggregateStart := time.Now()
	report := Aggregate(results, domain.ReportMetadata{
		ScorerKind:   p.matcher.ScorerName(),
		OracleKind:   p.oracle.Name(),
		Degradations: degradations,
	})
	p.observe("aggregate", aggregateStart)

	p.attachOverallSummary(ctx, report, doc1Title, doc2Title)

	p.log.Info("comparison pipeline finished",
		logging.Int("sections1", len(sections1)),
		logging.Int("sections2", len(sections2)),
		logging.Int("records", len(records)),
		logging.Int("degradations", len(report.Metadata.Degradations)),
		logging.Duration("elapsed", time.Since(started)))

	return report
}

// attachOverallSummary asks the oracle for an executive summary, falling back
// to the deterministic heuristic text when the oracle fails.
func (p *Pipeline) attachOverallSummary(ctx context.Context, report *domain.Report, doc1Title, doc2Title string) {
	summary, err := p.oracle.OverallSummary(ctx, report.Statistics, report.OverallChanges, doc1Title, doc2Title)
	if err == nil {
		report.Summary = summary
		return
	}

	p.log.Warn("overall summary failed, using heuristic text", logging.Err(err))
	summary, _ = oracle.NewHeuristic().OverallSummary(ctx, report.Statistics, report.OverallChanges, doc1Title, doc2Title)
	report.Summary = summary
	report.Metadata.Degradations = append(report.Metadata.Degradations, domain.Degradation{
		Stage:  domain.StageAggregate,
		Reason: "overall summary degraded to heuristic: " + err.Error(),
	})
}

func (p *Pipeline) observe(stage string, start time.Time) {
	if p.observer != nil {
		p.observer.ObserveStage(stage, time.Since(start))
	}
}
