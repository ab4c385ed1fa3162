package redis

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSequencesIncrementAndReset(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	seq := NewSequences(newClient(mr))
	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, "item_id")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	if err := seq.Reset(ctx, "item_id", 0); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got, _ := seq.Next(ctx, "item_id"); got != 1 {
		t.Fatalf("expected 1 after reset, got %d", got)
	}
	if v, _ := mr.Get("ecoquiz:seq:item_id"); v != "1" {
		t.Fatalf("unexpected stored counter %q", v)
	}
}

func TestSequencesConcurrentCallersGetDistinctValues(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	seq := NewSequences(newClient(mr))
	const n = 64

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.Next(ctx, "answer_id")
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Fatalf("expected %d distinct values, got %d", n, len(seen))
	}
}
