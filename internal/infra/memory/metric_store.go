package memory

import (
	"context"
	"sort"
	"sync"

	"ecoquiz-service/internal/domain"
)

// MetricStore is an in-memory implementation of app.MetricStore, indexed by question.
type MetricStore struct {
	mu         sync.Mutex
	byQuestion map[int64]*domain.Metric
}

func NewMetricStore() *MetricStore {
	return &MetricStore{byQuestion: make(map[int64]*domain.Metric)}
}

func (s *MetricStore) Increment(_ context.Context, questionID int64, c domain.Counter) (domain.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byQuestion[questionID]
	if !ok {
		return domain.Metric{}, domain.ErrMetricNotFound
	}
	m.Add(c, 1)
	return *m, nil
}

func (s *MetricStore) InsertOrIncrement(_ context.Context, metric domain.Metric, c domain.Counter) (domain.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byQuestion[metric.QuestionID]; ok {
		m.Add(c, 1)
		return *m, nil
	}
	m := &domain.Metric{ID: metric.ID, QuestionID: metric.QuestionID}
	m.Add(c, 1)
	s.byQuestion[metric.QuestionID] = m
	return *m, nil
}

func (s *MetricStore) Reset(_ context.Context, id int64) (domain.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.byQuestion {
		if m.ID == id {
			m.Responses, m.ResponsesEdited, m.ResponsesDeleted = 0, 0, 0
			return *m, nil
		}
	}
	return domain.Metric{}, domain.ErrMetricNotFound
}

func (s *MetricStore) List(_ context.Context) ([]domain.Metric, error) {
	s.mu.Lock()
	out := make([]domain.Metric, 0, len(s.byQuestion))
	for _, m := range s.byQuestion {
		out = append(out, *m)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
