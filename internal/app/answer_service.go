package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecoquiz-service/internal/domain"
	"ecoquiz-service/internal/logger"
)

// maxUpdateAttempts bounds the optimistic read-modify-write loop on an item's answers.
const maxUpdateAttempts = 5

// AnswerService manages the answers embedded in items.
type AnswerService struct {
	items   ItemStore
	seq     SequenceAllocator
	metrics *MetricService
	log     *logger.Logger
}

func NewAnswerService(items ItemStore, seq SequenceAllocator, metrics *MetricService, log *logger.Logger) *AnswerService {
	return &AnswerService{items: items, seq: seq, metrics: metrics, log: log.With("service", "answers")}
}

// Add stores a new answer with a fresh id and counts it as a response.
func (s *AnswerService) Add(ctx context.Context, itemID int64, in domain.AnswerInput) (domain.Answer, error) {
	if err := validateAnswer(in); err != nil {
		return domain.Answer{}, err
	}
	if _, err := s.items.Get(ctx, itemID); err != nil {
		return domain.Answer{}, err
	}
	id, err := s.seq.Next(ctx, domain.AnswerSequence)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("allocate answer id: %w", err)
	}
	answer := domain.Answer{ID: id, UserID: in.UserID, Answer: in.Answer}
	if err := s.items.AppendAnswer(ctx, itemID, answer); err != nil {
		return domain.Answer{}, err
	}
	s.record(ctx, itemID, domain.CounterResponses)
	return answer, nil
}

// Edit replaces the content of an answer in place, keeping its id.
// An empty UserID keeps the stored one.
func (s *AnswerService) Edit(ctx context.Context, itemID, answerID int64, in domain.AnswerInput) (domain.Answer, error) {
	// Id zero marks a legacy answer; it never addresses one.
	if answerID <= 0 {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	if err := validateAnswer(in); err != nil {
		return domain.Answer{}, err
	}
	var edited domain.Answer
	_, err := s.mutateAnswers(ctx, itemID, func(answers []domain.Answer) ([]domain.Answer, bool, error) {
		for i := range answers {
			if answers[i].ID != answerID {
				continue
			}
			answers[i].Answer = in.Answer
			if in.UserID != "" {
				answers[i].UserID = in.UserID
			}
			edited = answers[i]
			return answers, true, nil
		}
		return nil, false, domain.ErrAnswerNotFound
	})
	if err != nil {
		return domain.Answer{}, err
	}
	s.record(ctx, itemID, domain.CounterResponsesEdited)
	return edited, nil
}

// Delete removes every answer carrying answerID. Unknown answer ids are reported
// as domain.ErrAnswerNotFound, the same way unknown items are.
func (s *AnswerService) Delete(ctx context.Context, itemID, answerID int64) error {
	if answerID <= 0 {
		return domain.ErrAnswerNotFound
	}
	_, err := s.mutateAnswers(ctx, itemID, func(answers []domain.Answer) ([]domain.Answer, bool, error) {
		kept := answers[:0]
		for _, a := range answers {
			if a.ID != answerID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(answers) {
			return nil, false, domain.ErrAnswerNotFound
		}
		return kept, true, nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, itemID, domain.CounterResponsesDeleted)
	return nil
}

// List returns the item's answers, assigning ids to legacy answers first.
func (s *AnswerService) List(ctx context.Context, itemID int64) ([]domain.Answer, error) {
	item, _, err := s.backfillItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return item.Answers, nil
}

// MigrateBackfill assigns ids to every answer stored without one and returns how many
// were assigned. Answers that already have an id are never touched, so running it
// again is a no-op.
func (s *AnswerService) MigrateBackfill(ctx context.Context) (int, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, item := range items {
		if !missingIDs(item.Answers) {
			continue
		}
		_, n, err := s.backfillItem(ctx, item.ID)
		if errors.Is(err, domain.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return total, fmt.Errorf("backfill item %d: %w", item.ID, err)
		}
		total += n
	}
	s.log.Info("answer id backfill finished", "assigned", total, "items", len(items))
	return total, nil
}

// backfillItem assigns ids to the item's legacy answers. Ids allocated during an
// attempt that loses a version race are reused by the next attempt.
func (s *AnswerService) backfillItem(ctx context.Context, itemID int64) (domain.Item, int, error) {
	var reserved []int64
	assigned := 0
	item, err := s.mutateAnswers(ctx, itemID, func(answers []domain.Answer) ([]domain.Answer, bool, error) {
		assigned = 0
		taken := make(map[int64]bool, len(answers))
		for _, a := range answers {
			taken[a.ID] = true
		}
		for i := range answers {
			if answers[i].HasID() {
				continue
			}
			for assigned == len(reserved) {
				id, err := s.seq.Next(ctx, domain.AnswerSequence)
				if err != nil {
					return nil, false, fmt.Errorf("allocate answer id: %w", err)
				}
				if !taken[id] {
					reserved = append(reserved, id)
				}
			}
			answers[i].ID = reserved[assigned]
			assigned++
		}
		return answers, assigned > 0, nil
	})
	if err != nil {
		return domain.Item{}, 0, err
	}
	return item, assigned, nil
}

// mutateAnswers runs an optimistic read-modify-write over an item's answers. fn gets a
// private copy of the answers and reports whether it changed anything.
func (s *AnswerService) mutateAnswers(ctx context.Context, itemID int64, fn func([]domain.Answer) ([]domain.Answer, bool, error)) (domain.Item, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		item, err := s.items.Get(ctx, itemID)
		if err != nil {
			return domain.Item{}, err
		}
		item = item.Clone()
		next, changed, err := fn(item.Answers)
		if err != nil {
			return domain.Item{}, err
		}
		if !changed {
			return item, nil
		}
		err = s.items.ReplaceAnswers(ctx, itemID, item.Version, next)
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Debug("answer update lost a race, retrying", "item", itemID, "attempt", attempt)
			continue
		}
		if err != nil {
			return domain.Item{}, err
		}
		item.Answers = next
		item.Version++
		return item, nil
	}
	return domain.Item{}, domain.ErrVersionConflict
}

// record updates the metric counter. Answer and metric writes are independent, so a
// failure here is logged and the already persisted answer change stands.
func (s *AnswerService) record(ctx context.Context, itemID int64, c domain.Counter) {
	if s.metrics == nil {
		return
	}
	var err error
	switch c {
	case domain.CounterResponses:
		_, err = s.metrics.RecordResponse(ctx, itemID)
	case domain.CounterResponsesEdited:
		_, err = s.metrics.RecordEdit(ctx, itemID)
	case domain.CounterResponsesDeleted:
		_, err = s.metrics.RecordDelete(ctx, itemID)
	}
	if err != nil {
		s.log.Error("metric update failed", "item", itemID, "counter", string(c), "error", err)
	}
}

func validateAnswer(in domain.AnswerInput) error {
	if strings.TrimSpace(in.Answer) == "" {
		return domain.Invalid("answer text is required")
	}
	return nil
}

func missingIDs(answers []domain.Answer) bool {
	for _, a := range answers {
		if !a.HasID() {
			return true
		}
	}
	return false
}
