package comparison

import (
	"context"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// EventPublisher is the outbound port for domain events.  Deployments
// without a broker run with a nil publisher.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event common.DomainEvent) error
}

// ServiceMetrics records service-level counters.  Optional.
type ServiceMetrics interface {
	RecordComparison(status string)
	RecordCacheAccess(hit bool)
}

// Service orchestrates the comparison use cases: it resolves stored
// documents, runs the pipeline, persists the outcome, and fans out events.
type Service struct {
	docs        document.Repository
	comparisons domain.Repository
	pipeline    *Pipeline
	cache       domain.ReportCache
	events      EventPublisher
	metrics     ServiceMetrics
	log         logging.Logger
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithReportCache attaches a read-through report cache.
func WithReportCache(cache domain.ReportCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithEventPublisher attaches an event publisher.
func WithEventPublisher(pub EventPublisher) ServiceOption {
	return func(s *Service) { s.events = pub }
}

// WithServiceMetrics attaches service metrics.
func WithServiceMetrics(m ServiceMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the comparison service.
func NewService(docs document.Repository, comparisons domain.Repository, pipeline *Pipeline, log logging.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		docs:        docs,
		comparisons: comparisons,
		pipeline:    pipeline,
		log:         log.Named("comparison.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create compares two stored documents and persists the result.  The
// pipeline runs synchronously; the returned comparison is in a terminal
// state.
func (s *Service) Create(ctx context.Context, doc1ID, doc2ID common.ID) (*domain.Comparison, error) {
	doc1, err := s.docs.GetByID(ctx, doc1ID)
	if err != nil {
		return nil, err
	}
	doc2, err := s.docs.GetByID(ctx, doc2ID)
	if err != nil {
		return nil, err
	}

	c, err := domain.NewComparison(doc1.ID, doc2.ID)
	if err != nil {
		return nil, err
	}
	if err := s.comparisons.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := c.Start(); err != nil {
		return nil, err
	}
	if err := s.comparisons.Update(ctx, c); err != nil {
		return nil, err
	}

	report := s.pipeline.Run(ctx, doc1.Text, doc2.Text, doc1.Filename, doc2.Filename)
	if report.Failed() {
		s.finishFailed(ctx, c, errors.New(errors.ErrCodeComparisonFailed, report.Metadata.Error))
		return c, nil
	}

	if err := c.Complete(report); err != nil {
		return nil, err
	}
	if err := s.comparisons.Update(ctx, c); err != nil {
		return nil, err
	}
	s.recordStatus(string(c.Status))

	if s.cache != nil {
		if err := s.cache.Set(ctx, c.ID, report); err != nil {
			s.log.Warn("report cache write failed", logging.String("id", string(c.ID)), logging.Err(err))
		}
	}
	s.publish(ctx, domain.TopicComparisonCompleted, domain.NewCompletedEvent(c))

	s.log.Info("comparison completed",
		logging.String("id", string(c.ID)),
		logging.Int("sections", report.Statistics.TotalSections),
		logging.Float64("percent_changed", report.Statistics.PercentChanged))
	return c, nil
}

// finishFailed moves the comparison to failed and persists it.  Persistence
// errors at this point are logged, not returned: the caller already holds
// the failed comparison.
func (s *Service) finishFailed(ctx context.Context, c *domain.Comparison, cause error) {
	if err := c.Fail(cause); err != nil {
		s.log.Error("could not mark comparison failed", logging.String("id", string(c.ID)), logging.Err(err))
		return
	}
	if err := s.comparisons.Update(ctx, c); err != nil {
		s.log.Error("could not persist failed comparison", logging.String("id", string(c.ID)), logging.Err(err))
	}
	s.recordStatus(string(c.Status))
	s.publish(ctx, domain.TopicComparisonFailed, domain.NewFailedEvent(c))
}

// Get returns one comparison with its report.
func (s *Service) Get(ctx context.Context, id common.ID) (*domain.Comparison, error) {
	return s.comparisons.GetByID(ctx, id)
}

// GetReport returns the report of a completed comparison, preferring the
// cache.
func (s *Service) GetReport(ctx context.Context, id common.ID) (*domain.Report, error) {
	if s.cache != nil {
		report, hit, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("report cache read failed", logging.String("id", string(id)), logging.Err(err))
		} else {
			s.recordCache(hit)
			if hit {
				return report, nil
			}
		}
	}

	c, err := s.comparisons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Report == nil {
		return nil, errors.Newf(errors.ErrCodeComparisonNotFound,
			"comparison %s has no report (status %s)", id, c.Status)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, id, c.Report); err != nil {
			s.log.Warn("report cache write failed", logging.String("id", string(id)), logging.Err(err))
		}
	}
	return c.Report, nil
}

// List returns comparisons matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Comparison, int64, error) {
	return s.comparisons.List(ctx, filter)
}

// Delete removes a comparison and drops its cached report.
func (s *Service) Delete(ctx context.Context, id common.ID) error {
	if err := s.comparisons.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log.Warn("report cache invalidate failed", logging.String("id", string(id)), logging.Err(err))
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, event common.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, topic, event); err != nil {
		s.log.Warn("event publish failed", logging.String("topic", topic), logging.Err(err))
	}
}

func (s *Service) recordStatus(status string) {
	if s.metrics != nil {
		s.metrics.RecordComparison(status)
	}
}

func (s *Service) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheAccess(hit)
	}
}
