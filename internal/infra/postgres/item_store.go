package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ecoquiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type itemRow struct {
	bun.BaseModel `bun:"table:items"`

	ID             int64           `bun:"id,pk"`
	QuestionNumber int64           `bun:"question_number"`
	Description    string          `bun:"description"`
	Answers        []domain.Answer `bun:"answers,type:jsonb"`
	Version        int64           `bun:"version"`
}

func (r itemRow) toDomain() domain.Item {
	answers := r.Answers
	if answers == nil {
		answers = []domain.Answer{}
	}
	return domain.Item{
		ID:             r.ID,
		QuestionNumber: r.QuestionNumber,
		Description:    r.Description,
		Answers:        answers,
		Version:        r.Version,
	}
}

// ItemStore keeps items in the items table with answers embedded as a JSONB array.
type ItemStore struct {
	db *bun.DB
}

func NewItemStore(db *bun.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) Insert(ctx context.Context, item domain.Item) error {
	row := itemRow{
		ID:             item.ID,
		QuestionNumber: item.QuestionNumber,
		Description:    item.Description,
		Answers:        item.Answers,
		Version:        1,
	}
	if row.Answers == nil {
		row.Answers = []domain.Answer{}
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemExists
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *ItemStore) Get(ctx context.Context, id int64) (domain.Item, error) {
	var row itemRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ItemStore) List(ctx context.Context) ([]domain.Item, error) {
	var rows []itemRow
	if err := s.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *ItemStore) Update(ctx context.Context, id int64, patch domain.ItemPatch) (bool, error) {
	q := s.db.NewUpdate().Model((*itemRow)(nil)).
		Set("version = version + 1").
		Where("id = ?", id)
	if patch.QuestionNumber != nil {
		q = q.Set("question_number = ?", *patch.QuestionNumber)
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
	}
	// Only rows whose values actually differ count as changed.
	q = q.WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		if patch.QuestionNumber != nil {
			q = q.WhereOr("question_number <> ?", *patch.QuestionNumber)
		}
		if patch.Description != nil {
			q = q.WhereOr("description <> ?", *patch.Description)
		}
		return q
	})
	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}
	return n > 0, nil
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*itemRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *ItemStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().Model((*itemRow)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// AppendAnswer concatenates onto the stored array in a single statement, so
// concurrent appends never overwrite each other.
func (s *ItemStore) AppendAnswer(ctx context.Context, itemID int64, answer domain.Answer) error {
	raw, err := json.Marshal([]domain.Answer{answer})
	if err != nil {
		return fmt.Errorf("encode answer: %w", err)
	}
	res, err := s.db.NewUpdate().Model((*itemRow)(nil)).
		Set("answers = answers || ?::jsonb", string(raw)).
		Set("version = version + 1").
		Where("id = ?", itemID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *ItemStore) ReplaceAnswers(ctx context.Context, itemID, version int64, answers []domain.Answer) error {
	if answers == nil {
		answers = []domain.Answer{}
	}
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	res, err := s.db.NewUpdate().Model((*itemRow)(nil)).
		Set("answers = ?::jsonb", string(raw)).
		Set("version = version + 1").
		Where("id = ?", itemID).
		Where("version = ?", version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	exists, err := s.db.NewSelect().Model((*itemRow)(nil)).Where("id = ?", itemID).Exists(ctx)
	if err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	if !exists {
		return domain.ErrItemNotFound
	}
	return domain.ErrVersionConflict
}
