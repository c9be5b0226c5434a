// Package document implements the document use cases: ingesting uploads,
// listing stored documents, and removing them together with their raw blobs.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// MaxUploadBytes bounds a single upload.  Policy documents are text-heavy;
// anything past this is almost certainly not one.
const MaxUploadBytes = 50 << 20

// EventPublisher is the outbound port for domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event common.DomainEvent) error
}

// IngestMetrics records ingestion counters.  Optional.
type IngestMetrics interface {
	RecordDocumentIngested(docType string)
}

// Service orchestrates document ingestion and retrieval.
type Service struct {
	repo      document.Repository
	extractor document.Extractor
	blobs     document.BlobStore
	events    EventPublisher
	metrics   IngestMetrics
	log       logging.Logger
}

// ServiceOption configures optional service collaborators.
type ServiceOption func(*Service)

// WithBlobStore retains raw uploads in object storage.
func WithBlobStore(store document.BlobStore) ServiceOption {
	return func(s *Service) { s.blobs = store }
}

// WithEventPublisher attaches an event publisher.
func WithEventPublisher(pub EventPublisher) ServiceOption {
	return func(s *Service) { s.events = pub }
}

// WithIngestMetrics attaches ingestion metrics.
func WithIngestMetrics(m IngestMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// NewService wires the document service.
func NewService(repo document.Repository, extractor document.Extractor, log logging.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &Service{
		repo:      repo,
		extractor: extractor,
		log:       log.Named("document.service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload ingests one document: extract its text, persist the entity, and
// retain the raw bytes when a blob store is configured.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*document.Document, error) {
	docType, err := document.TypeForFilename(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "read upload")
	}
	if len(data) > MaxUploadBytes {
		return nil, errors.Newf(errors.ErrCodeDocumentTooLarge,
			"upload exceeds %d bytes", MaxUploadBytes)
	}

	text, err := s.extractor.ExtractText(ctx, bytes.NewReader(data), docType)
	if err != nil {
		return nil, err
	}

	doc, err := document.NewDocument(filename, int64(len(data)), text)
	if err != nil {
		return nil, err
	}

	if s.blobs != nil {
		doc.StoragePath = blobKey(doc)
		if err := s.blobs.Put(ctx, doc.StoragePath, bytes.NewReader(data), int64(len(data)), contentType(docType)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentIngested(string(doc.DocType))
	}
	s.publish(ctx, document.TopicDocumentIngested, document.NewIngestedEvent(doc))

	s.log.Info("document ingested",
		logging.String("id", string(doc.ID)),
		logging.String("filename", doc.Filename),
		logging.String("doc_type", string(doc.DocType)),
		logging.Int("word_count", doc.WordCount))
	return doc, nil
}

// Get returns one stored document.
func (s *Service) Get(ctx context.Context, id common.ID) (*document.Document, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns stored documents, newest first.
func (s *Service) List(ctx context.Context, p common.Pagination) ([]*document.Document, int64, error) {
	return s.repo.List(ctx, p)
}

// Delete removes a document and its raw blob.
func (s *Service) Delete(ctx context.Context, id common.ID) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.blobs != nil && doc.StoragePath != "" {
		if err := s.blobs.Remove(ctx, doc.StoragePath); err != nil {
			s.log.Warn("blob removal failed",
				logging.String("id", string(id)),
				logging.String("key", doc.StoragePath),
				logging.Err(err))
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

func blobKey(doc *document.Document) string {
	return fmt.Sprintf("uploads/%s%s", doc.ID, strings.ToLower(filepath.Ext(doc.Filename)))
}

func contentType(docType document.DocType) string {
	switch docType {
	case document.TypePDF:
		return "application/pdf"
	case document.TypeHTML:
		return "text/html"
	default:
		return "text/plain"
	}
}
