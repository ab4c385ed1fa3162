package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
)

// MetricStore persists per-question counters. Both increment methods must be atomic
// against concurrent callers.
type MetricStore interface {
	// Increment bumps counter c of the metric for questionID by one;
	// domain.ErrMetricNotFound if the question has no metric yet.
	Increment(ctx context.Context, questionID int64, c domain.Counter) (domain.Metric, error)
	// InsertOrIncrement stores m with counter c set to one, or bumps c on the metric
	// already recorded for m.QuestionID.
	InsertOrIncrement(ctx context.Context, m domain.Metric, c domain.Counter) (domain.Metric, error)
	// Reset zeroes all counters of the metric with the given id.
	Reset(ctx context.Context, id int64) (domain.Metric, error)
	List(ctx context.Context) ([]domain.Metric, error)
}

// MetricService aggregates answer activity and publishes snapshots to live subscribers.
type MetricService struct {
	store MetricStore
	seq   SequenceAllocator
	log   *logger.Logger
	feed  *metricFeed
}

func NewMetricService(store MetricStore, seq SequenceAllocator, log *logger.Logger) *MetricService {
	return &MetricService{
		store: store,
		seq:   seq,
		log:   log.With("service", "metrics"),
		feed:  newMetricFeed(),
	}
}

// RecordResponse counts a new answer for the question.
func (s *MetricService) RecordResponse(ctx context.Context, questionID int64) (domain.Metric, error) {
	return s.Record(ctx, questionID, domain.CounterResponses)
}

// RecordEdit counts an edited answer for the question.
func (s *MetricService) RecordEdit(ctx context.Context, questionID int64) (domain.Metric, error) {
	return s.Record(ctx, questionID, domain.CounterResponsesEdited)
}

// RecordDelete counts a deleted answer for the question.
func (s *MetricService) RecordDelete(ctx context.Context, questionID int64) (domain.Metric, error) {
	return s.Record(ctx, questionID, domain.CounterResponsesDeleted)
}

// Record bumps counter c for the question, creating its metric on first use.
// A metric id is only allocated when the question has no metric yet; if two first
// responses race, the store folds them into one record and the spare id is a gap.
func (s *MetricService) Record(ctx context.Context, questionID int64, c domain.Counter) (domain.Metric, error) {
	if !c.Valid() {
		return domain.Metric{}, domain.Invalid("unknown counter %q", c)
	}
	m, err := s.store.Increment(ctx, questionID, c)
	if errors.Is(err, domain.ErrMetricNotFound) {
		id, allocErr := s.seq.Next(ctx, domain.MetricSequence)
		if allocErr != nil {
			return domain.Metric{}, fmt.Errorf("allocate metric id: %w", allocErr)
		}
		m, err = s.store.InsertOrIncrement(ctx, domain.Metric{ID: id, QuestionID: questionID}, c)
	}
	if err != nil {
		return domain.Metric{}, err
	}
	s.publish(ctx)
	return m, nil
}

// Reset zeroes the counters of one metric.
func (s *MetricService) Reset(ctx context.Context, id int64) (domain.Metric, error) {
	m, err := s.store.Reset(ctx, id)
	if err != nil {
		return domain.Metric{}, err
	}
	s.log.Info("metric reset", "id", id, "question", m.QuestionID)
	s.publish(ctx)
	return m, nil
}

func (s *MetricService) List(ctx context.Context) ([]domain.Metric, error) {
	return s.store.List(ctx)
}

// Subscribe returns a channel that receives the full metric list after every change,
// starting with the current one. The caller must invoke the returned cancel function.
func (s *MetricService) Subscribe(ctx context.Context) (<-chan []domain.Metric, func(), error) {
	s.feed.publishMu.Lock()
	defer s.feed.publishMu.Unlock()
	initial, err := s.store.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.subscribe(initial)
	return ch, cancel, nil
}

// publish snapshots the metrics for subscribers. Snapshots are taken one at a time so
// subscribers never see counts go backwards.
func (s *MetricService) publish(ctx context.Context) {
	if !s.feed.active() {
		return
	}
	s.feed.publishMu.Lock()
	defer s.feed.publishMu.Unlock()
	snapshot, err := s.store.List(ctx)
	if err != nil {
		s.log.Warn("metric snapshot failed", "error", err)
		return
	}
	s.feed.broadcast(snapshot)
}

type metricFeed struct {
	publishMu   sync.Mutex
	mu          sync.RWMutex
	subscribers map[chan []domain.Metric]struct{}
}

func newMetricFeed() *metricFeed {
	return &metricFeed{subscribers: make(map[chan []domain.Metric]struct{})}
}

func (f *metricFeed) active() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers) > 0
}

func (f *metricFeed) subscribe(initial []domain.Metric) (<-chan []domain.Metric, func()) {
	ch := make(chan []domain.Metric, 8)
	ch <- initial

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *metricFeed) broadcast(snapshot []domain.Metric) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop its oldest snapshot so the latest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
