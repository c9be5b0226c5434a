package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// ComparisonRepository is the PostgreSQL implementation of the comparison
// domain's Repository.  Reports are stored as a JSONB column alongside the
// lifecycle fields.
type ComparisonRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewComparisonRepository constructs a ready-to-use ComparisonRepository.
func NewComparisonRepository(pool *pgxpool.Pool, log logging.Logger) *ComparisonRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ComparisonRepository{pool: pool, log: log.Named("repo.comparison")}
}

const comparisonColumns = `id, document1_id, document2_id, status, report, error, created_at, started_at, completed_at`

func (r *ComparisonRepository) Create(ctx context.Context, c *domain.Comparison) error {
	report, err := marshalReport(c.Report)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO comparisons (`+comparisonColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Document1ID, c.Document2ID, c.Status, report,
		nullIfEmpty(c.Error), c.CreatedAt, c.StartedAt, c.CompletedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "insert comparison")
	}
	r.log.Debug("stored comparison", logging.String("id", string(c.ID)))
	return nil
}

func (r *ComparisonRepository) Update(ctx context.Context, c *domain.Comparison) error {
	report, err := marshalReport(c.Report)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE comparisons
		 SET status = $2, report = $3, error = $4, started_at = $5, completed_at = $6
		 WHERE id = $1`,
		c.ID, c.Status, report, nullIfEmpty(c.Error), c.StartedAt, c.CompletedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "update comparison")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", c.ID)
	}
	return nil
}

func (r *ComparisonRepository) GetByID(ctx context.Context, id common.ID) (*domain.Comparison, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+comparisonColumns+` FROM comparisons WHERE id = $1`, id)

	c, err := scanComparison(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "query comparison")
	}
	return c, nil
}

func (r *ComparisonRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Comparison, int64, error) {
	where, args := buildComparisonFilter(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM comparisons`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "count comparisons")
	}

	limit, offset := limitOffset(filter.Pagination)
	query := fmt.Sprintf(`SELECT `+comparisonColumns+` FROM comparisons%s
		ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "list comparisons")
	}
	defer rows.Close()

	var out []*domain.Comparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan comparison")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterate comparisons")
	}
	return out, total, nil
}

func (r *ComparisonRepository) Delete(ctx context.Context, id common.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comparisons WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "delete comparison")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeComparisonNotFound, "comparison %s not found", id)
	}
	return nil
}

// buildComparisonFilter renders the WHERE clause for List.  A DocumentID
// filter matches either side of the compared pair.
func buildComparisonFilter(filter domain.ListFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		clauses = append(clauses, fmt.Sprintf("(document1_id = $%d OR document2_id = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanComparison(row pgx.Row) (*domain.Comparison, error) {
	var c domain.Comparison
	var report []byte
	var errMsg *string
	err := row.Scan(&c.ID, &c.Document1ID, &c.Document2ID, &c.Status,
		&report, &errMsg, &c.CreatedAt, &c.StartedAt, &c.CompletedAt)
	if err != nil {
		return nil, err
	}
	if errMsg != nil {
		c.Error = *errMsg
	}
	if len(report) > 0 {
		var rep domain.Report
		if err := json.Unmarshal(report, &rep); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode stored report")
		}
		c.Report = &rep
	}
	return &c, nil
}

func marshalReport(rep *domain.Report) ([]byte, error) {
	if rep == nil {
		return nil, nil
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encode report")
	}
	return data, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
