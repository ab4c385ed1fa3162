package app_test

import (
	"context"
	"errors"
	"testing"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/infra/memory"
)

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := app.NewChallengeService(memory.NewChallengeStore())

	if _, err := svc.Create(ctx, "", "no title"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	c, err := svc.Create(ctx, "Zero waste week", "Produce no landfill waste for a week")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	desc := "Carry a reusable bottle"
	updated, err := svc.Update(ctx, c.ID, domain.ChallengePatch{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != c.Title || updated.Description != desc {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	list, _ := svc.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one challenge, got %d", len(list))
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, c.ID, domain.ChallengePatch{Description: &desc}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
