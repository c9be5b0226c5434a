// Package repositories provides the PostgreSQL implementations of the domain
// persistence ports.
package repositories

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

const defaultPageSize = 20
const maxPageSize = 100

// limitOffset normalizes pagination into SQL LIMIT/OFFSET values.
func limitOffset(p common.Pagination) (limit, offset int) {
	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}

// DocumentRepository is the PostgreSQL implementation of document.Repository.
type DocumentRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewDocumentRepository constructs a ready-to-use DocumentRepository.
func NewDocumentRepository(pool *pgxpool.Pool, log logging.Logger) *DocumentRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentRepository{pool: pool, log: log.Named("repo.document")}
}

const documentColumns = `id, filename, doc_type, size_bytes, storage_path, content_text, word_count, uploaded_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO policy_documents (`+documentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID, doc.Filename, doc.DocType, doc.Size, doc.StoragePath,
		doc.Text, doc.WordCount, doc.UploadedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "insert document")
	}
	r.log.Debug("stored document", logging.String("id", string(doc.ID)))
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id common.ID) (*document.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM policy_documents WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "query document")
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, p common.Pagination) ([]*document.Document, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM policy_documents`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count documents")
	}

	limit, offset := limitOffset(p)
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM policy_documents
		 ORDER BY uploaded_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list documents")
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan document")
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterate documents")
	}
	return docs, total, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM policy_documents WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete document")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeDocumentNotFound, "document %s not found", id)
	}
	return nil
}

func scanDocument(row pgx.Row) (*document.Document, error) {
	var doc document.Document
	var storagePath *string
	err := row.Scan(&doc.ID, &doc.Filename, &doc.DocType, &doc.Size,
		&storagePath, &doc.Text, &doc.WordCount, &doc.UploadedAt)
	if err != nil {
		return nil, err
	}
	if storagePath != nil {
		doc.StoragePath = *storagePath
	}
	return &doc, nil
}
