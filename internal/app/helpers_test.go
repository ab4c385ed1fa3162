package app_test

import (
	"context"
	"sync"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/infra/memory"
	"ecoquiz-service/internal/logger"
)

type testEnv struct {
	seq     *countingSequences
	items   *memory.ItemStore
	metrics *memory.MetricStore
	Items   *app.ItemService
	Answers *app.AnswerService
	Metrics *app.MetricService
}

func newTestEnv() *testEnv {
	log := logger.Nop()
	seq := &countingSequences{Sequences: memory.NewSequences(), calls: map[string]int{}}
	items := memory.NewItemStore()
	metricStore := memory.NewMetricStore()
	metrics := app.NewMetricService(metricStore, seq, log)
	return &testEnv{
		seq:     seq,
		items:   items,
		metrics: metricStore,
		Items:   app.NewItemService(items, seq, log),
		Answers: app.NewAnswerService(items, seq, metrics, log),
		Metrics: metrics,
	}
}

// countingSequences records how many ids were drawn per sequence.
type countingSequences struct {
	*memory.Sequences
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingSequences) Next(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
	return c.Sequences.Next(ctx, name)
}

func (c *countingSequences) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}
