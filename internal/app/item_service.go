package app

import (
	"context"
	"fmt"

	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
)

// ItemStore persists items and their embedded answers.
type ItemStore interface {
	// Insert stores a new item; domain.ErrItemExists if the id is taken.
	Insert(ctx context.Context, item domain.Item) error
	Get(ctx context.Context, id int64) (domain.Item, error)
	// List returns all items ordered by ascending id.
	List(ctx context.Context) ([]domain.Item, error)
	// Update applies the non-nil patch fields and reports whether a record changed.
	Update(ctx context.Context, id int64, patch domain.ItemPatch) (bool, error)
	// Delete removes one item; domain.ErrItemNotFound if nothing was removed.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
	// AppendAnswer atomically appends to the item's answers.
	AppendAnswer(ctx context.Context, itemID int64, answer domain.Answer) error
	// ReplaceAnswers overwrites the answers only if the stored version still equals
	// version; domain.ErrVersionConflict otherwise.
	ReplaceAnswers(ctx context.Context, itemID, version int64, answers []domain.Answer) error
}

// ItemService implements the quiz question use cases.
// Ids are always allocated from the item sequence; caller supplied ids are only
// checked for consistency with the question number.
type ItemService struct {
	items ItemStore
	seq   SequenceAllocator
	log   *logger.Logger
}

func NewItemService(items ItemStore, seq SequenceAllocator, log *logger.Logger) *ItemService {
	return &ItemService{items: items, seq: seq, log: log.With("service", "items")}
}

// Create validates the input and stores a new item under a freshly allocated id.
func (s *ItemService) Create(ctx context.Context, in domain.ItemInput) (domain.Item, error) {
	if in.ID != in.QuestionNumber {
		return domain.Item{}, domain.ErrIDMismatch
	}
	id, err := s.seq.Next(ctx, domain.ItemSequence)
	if err != nil {
		return domain.Item{}, fmt.Errorf("allocate item id: %w", err)
	}
	item := domain.Item{
		ID:             id,
		QuestionNumber: id,
		Description:    in.Description,
		Answers:        []domain.Answer{},
	}
	if err := s.items.Insert(ctx, item); err != nil {
		return domain.Item{}, err
	}
	s.log.Debug("item created", "id", id)
	return s.items.Get(ctx, id)
}

func (s *ItemService) Get(ctx context.Context, id int64) (domain.Item, error) {
	return s.items.Get(ctx, id)
}

func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	return s.items.List(ctx)
}

// Update applies a partial update. A write that changes nothing is not an error as
// long as the item exists; the current record is returned either way.
func (s *ItemService) Update(ctx context.Context, id int64, patch domain.ItemPatch) (domain.Item, error) {
	if patch.QuestionNumber != nil && *patch.QuestionNumber != id {
		return domain.Item{}, domain.ErrIDMismatch
	}
	if !patch.Empty() {
		if _, err := s.items.Update(ctx, id, patch); err != nil {
			return domain.Item{}, err
		}
	}
	return s.items.Get(ctx, id)
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

// DeleteAll drops every item and rewinds the item sequence so the next item gets id 1.
// It is not atomic against concurrent creates.
func (s *ItemService) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.items.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.seq.Reset(ctx, domain.ItemSequence, 0); err != nil {
		return n, fmt.Errorf("reset item sequence: %w", err)
	}
	s.log.Info("all items deleted", "count", n)
	return n, nil
}
