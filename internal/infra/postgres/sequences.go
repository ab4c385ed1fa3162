package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Sequences allocates ids from the sequences table. The upsert below increments
// and returns in one statement, so concurrent callers never see the same value.
type Sequences struct {
	pool *pgxpool.Pool
}

func NewSequences(pool *pgxpool.Pool) *Sequences {
	return &Sequences{pool: pool}
}

func (s *Sequences) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}

func (s *Sequences) Reset(ctx context.Context, name string, value int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`, name, value)
	if err != nil {
		return fmt.Errorf("reset sequence %s: %w", name, err)
	}
	return nil
}
