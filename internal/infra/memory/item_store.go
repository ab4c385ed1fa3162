package memory

import (
	"context"
	"sort"
	"sync"

	"ecoquiz-service/internal/domain"
)

// ItemStore is an in-memory implementation of app.ItemStore.
type ItemStore struct {
	mu    sync.RWMutex
	items map[int64]domain.Item
}

func NewItemStore() *ItemStore {
	return &ItemStore{items: make(map[int64]domain.Item)}
}

func (s *ItemStore) Insert(_ context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return domain.ErrItemExists
	}
	item = item.Clone()
	item.Version = 1
	s.items[item.ID] = item
	return nil
}

func (s *ItemStore) Get(_ context.Context, id int64) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (s *ItemStore) List(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	out := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ItemStore) Update(_ context.Context, id int64, patch domain.ItemPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return false, nil
	}
	changed := false
	if patch.QuestionNumber != nil && *patch.QuestionNumber != item.QuestionNumber {
		item.QuestionNumber = *patch.QuestionNumber
		changed = true
	}
	if patch.Description != nil && *patch.Description != item.Description {
		item.Description = *patch.Description
		changed = true
	}
	if changed {
		item.Version++
		s.items[id] = item
	}
	return changed, nil
}

func (s *ItemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *ItemStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.items))
	s.items = make(map[int64]domain.Item)
	return n, nil
}

func (s *ItemStore) AppendAnswer(_ context.Context, itemID int64, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	item = item.Clone()
	item.Answers = append(item.Answers, answer)
	item.Version++
	s.items[itemID] = item
	return nil
}

func (s *ItemStore) ReplaceAnswers(_ context.Context, itemID, version int64, answers []domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return domain.ErrItemNotFound
	}
	if item.Version != version {
		return domain.ErrVersionConflict
	}
	item.Answers = make([]domain.Answer, len(answers))
	copy(item.Answers, answers)
	item.Version++
	s.items[itemID] = item
	return nil
}
