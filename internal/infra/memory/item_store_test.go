package memory

import (
	"context"
	"errors"
	"testing"

	"ecoquiz-service/internal/domain"
)

func TestItemStoreListSortedAndCopied(t *testing.T) {
	ctx := context.Background()
	store := NewItemStore()
	for _, id := range []int64{3, 1, 2} {
		if err := store.Insert(ctx, domain.Item{ID: id, QuestionNumber: id}); err != nil {
			t.Fatalf("insert %d: %v", id, err)
		}
	}
	if err := store.Insert(ctx, domain.Item{ID: 2, QuestionNumber: 2}); !errors.Is(err, domain.ErrItemExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 || items[0].ID != 1 || items[1].ID != 2 || items[2].ID != 3 {
		t.Fatalf("expected ascending ids, got %+v", items)
	}

	if err := store.AppendAnswer(ctx, 1, domain.Answer{ID: 9, Answer: "a"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := store.Get(ctx, 1)
	got.Answers[0].Answer = "mutated"
	again, _ := store.Get(ctx, 1)
	if again.Answers[0].Answer != "a" {
		t.Fatalf("store leaked internal answer slice")
	}
}

func TestItemStoreReplaceAnswersChecksVersion(t *testing.T) {
	ctx := context.Background()
	store := NewItemStore()
	_ = store.Insert(ctx, domain.Item{ID: 1, QuestionNumber: 1})

	item, _ := store.Get(ctx, 1)
	if err := store.AppendAnswer(ctx, 1, domain.Answer{ID: 1, Answer: "x"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := store.ReplaceAnswers(ctx, 1, item.Version, nil)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	fresh, _ := store.Get(ctx, 1)
	if err := store.ReplaceAnswers(ctx, 1, fresh.Version, []domain.Answer{}); err != nil {
		t.Fatalf("replace with current version: %v", err)
	}
	if err := store.ReplaceAnswers(ctx, 42, 1, nil); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestItemStoreUpdateReportsChange(t *testing.T) {
	ctx := context.Background()
	store := NewItemStore()
	_ = store.Insert(ctx, domain.Item{ID: 1, QuestionNumber: 1, Description: "old"})

	desc := "new"
	changed, err := store.Update(ctx, 1, domain.ItemPatch{Description: &desc})
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	changed, err = store.Update(ctx, 1, domain.ItemPatch{Description: &desc})
	if err != nil || changed {
		t.Fatalf("expected no-op update, got changed=%v err=%v", changed, err)
	}
	changed, err = store.Update(ctx, 7, domain.ItemPatch{Description: &desc})
	if err != nil || changed {
		t.Fatalf("missing item should not change, got changed=%v err=%v", changed, err)
	}
}
