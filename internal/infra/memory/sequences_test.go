package memory

import (
	"context"
	"sync"
	"testing"
)

func TestSequencesStartAtOneAndReset(t *testing.T) {
	ctx := context.Background()
	seq := NewSequences()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, "item_id")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
	if got, _ := seq.Next(ctx, "answer_id"); got != 1 {
		t.Fatalf("sequences must be independent, got %d", got)
	}

	_ = seq.Reset(ctx, "item_id", 0)
	if got, _ := seq.Next(ctx, "item_id"); got != 1 {
		t.Fatalf("expected 1 after reset, got %d", got)
	}
}

func TestSequencesConcurrentDistinct(t *testing.T) {
	ctx := context.Background()
	seq := NewSequences()
	const n = 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]struct{}, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := seq.Next(ctx, "answer_id")
			mu.Lock()
			seen[v] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("expected %d distinct values, got %d", n, len(seen))
	}
}
