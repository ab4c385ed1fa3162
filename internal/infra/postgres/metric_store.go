package postgres

import (
	"context"
	"errors"
	"fmt"

	"ecoquiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const metricColumns = `id, question_id, responses, responses_edited, responses_deleted`

// MetricStore keeps counters in the metrics table; increments are single
// UPDATE/UPSERT statements.
type MetricStore struct {
	pool *pgxpool.Pool
}

func NewMetricStore(pool *pgxpool.Pool) *MetricStore {
	return &MetricStore{pool: pool}
}

func (s *MetricStore) Increment(ctx context.Context, questionID int64, c domain.Counter) (domain.Metric, error) {
	col, err := counterColumn(c)
	if err != nil {
		return domain.Metric{}, err
	}
	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE metrics SET %[1]s = %[1]s + 1 WHERE question_id = $1 RETURNING %[2]s`, col, metricColumns),
		questionID)
	return scanMetric(row)
}

func (s *MetricStore) InsertOrIncrement(ctx context.Context, m domain.Metric, c domain.Counter) (domain.Metric, error) {
	col, err := counterColumn(c)
	if err != nil {
		return domain.Metric{}, err
	}
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO metrics (id, question_id, %[1]s) VALUES ($1, $2, 1)
		ON CONFLICT (question_id) DO UPDATE SET %[1]s = metrics.%[1]s + 1
		RETURNING %[2]s`, col, metricColumns),
		m.ID, m.QuestionID)
	return scanMetric(row)
}

func (s *MetricStore) Reset(ctx context.Context, id int64) (domain.Metric, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE metrics SET responses = 0, responses_edited = 0, responses_deleted = 0
		WHERE id = $1 RETURNING `+metricColumns, id)
	return scanMetric(row)
}

func (s *MetricStore) List(ctx context.Context) ([]domain.Metric, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+metricColumns+` FROM metrics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	out := []domain.Metric{}
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMetric(row pgx.Row) (domain.Metric, error) {
	var m domain.Metric
	err := row.Scan(&m.ID, &m.QuestionID, &m.Responses, &m.ResponsesEdited, &m.ResponsesDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Metric{}, domain.ErrMetricNotFound
	}
	if err != nil {
		return domain.Metric{}, fmt.Errorf("scan metric: %w", err)
	}
	return m, nil
}

// counterColumn maps a counter to its column; only known names reach SQL.
func counterColumn(c domain.Counter) (string, error) {
	if !c.Valid() {
		return "", domain.Invalid("unknown counter %q", c)
	}
	return string(c), nil
}
