package app

import (
	"context"
	"strings"

	"ecoquiz-service/internal/domain"
	"github.com/google/uuid"
)

// ChallengeStore persists challenges.
type ChallengeStore interface {
	Insert(ctx context.Context, c domain.Challenge) error
	Get(ctx context.Context, id string) (domain.Challenge, error)
	List(ctx context.Context) ([]domain.Challenge, error)
	Update(ctx context.Context, id string, patch domain.ChallengePatch) (bool, error)
	Delete(ctx context.Context, id string) error
}

type ChallengeService struct {
	store ChallengeStore
}

func NewChallengeService(store ChallengeStore) *ChallengeService {
	return &ChallengeService{store: store}
}

func (s *ChallengeService) Create(ctx context.Context, title, description string) (domain.Challenge, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Challenge{}, domain.Invalid("title is required")
	}
	c := domain.Challenge{ID: uuid.NewString(), Title: title, Description: description}
	if err := s.store.Insert(ctx, c); err != nil {
		return domain.Challenge{}, err
	}
	return s.store.Get(ctx, c.ID)
}

func (s *ChallengeService) Get(ctx context.Context, id string) (domain.Challenge, error) {
	return s.store.Get(ctx, id)
}

func (s *ChallengeService) List(ctx context.Context) ([]domain.Challenge, error) {
	return s.store.List(ctx)
}

// Update applies the set fields and returns the current record.
func (s *ChallengeService) Update(ctx context.Context, id string, patch domain.ChallengePatch) (domain.Challenge, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return domain.Challenge{}, domain.Invalid("title must not be empty")
	}
	if patch.Title != nil || patch.Description != nil {
		if _, err := s.store.Update(ctx, id, patch); err != nil {
			return domain.Challenge{}, err
		}
	}
	return s.store.Get(ctx, id)
}

func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
