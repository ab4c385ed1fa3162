package memory

import (
	"context"
	"sync"

	"ecoquiz-service/internal/domain"
)

// ChallengeStore keeps challenges in insertion order.
type ChallengeStore struct {
	mu         sync.RWMutex
	order      []string
	challenges map[string]domain.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{challenges: make(map[string]domain.Challenge)}
}

func (s *ChallengeStore) Insert(_ context.Context, c domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.challenges[c.ID] = c
	return nil
}

func (s *ChallengeStore) Get(_ context.Context, id string) (domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return c, nil
}

func (s *ChallengeStore) List(_ context.Context) ([]domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Challenge, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.challenges[id])
	}
	return out, nil
}

func (s *ChallengeStore) Update(_ context.Context, id string, patch domain.ChallengePatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.challenges[id]
	if !ok {
		return false, nil
	}
	before := c
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	s.challenges[id] = c
	return c != before, nil
}

func (s *ChallengeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[id]; !ok {
		return domain.ErrChallengeNotFound
	}
	delete(s.challenges, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
