package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecoquiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type challengeRow struct {
	bun.BaseModel `bun:"table:challenges"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func (r challengeRow) toDomain() domain.Challenge {
	return domain.Challenge{ID: r.ID, Title: r.Title, Description: r.Description}
}

type ChallengeStore struct {
	db *bun.DB
}

func NewChallengeStore(db *bun.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

func (s *ChallengeStore) Insert(ctx context.Context, c domain.Challenge) error {
	row := challengeRow{ID: c.ID, Title: c.Title, Description: c.Description}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, id string) (domain.Challenge, error) {
	var row challengeRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ChallengeStore) List(ctx context.Context) ([]domain.Challenge, error) {
	var rows []challengeRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	out := make([]domain.Challenge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *ChallengeStore) Update(ctx context.Context, id string, patch domain.ChallengePatch) (bool, error) {
	q := s.db.NewUpdate().Model((*challengeRow)(nil)).Where("id = ?", id)
	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
	}
	q = q.WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		if patch.Title != nil {
			q = q.WhereOr("title <> ?", *patch.Title)
		}
		if patch.Description != nil {
			q = q.WhereOr("description <> ?", *patch.Description)
		}
		return q
	})
	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update challenge: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *ChallengeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*challengeRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}
