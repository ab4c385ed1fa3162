package domain

import "time"

// Sequence names used for id allocation.
const (
	ItemSequence   = "item_id"
	AnswerSequence = "answer_id"
	MetricSequence = "metrics_id"
)

// Answer is a free-text response embedded in an item. ID is zero for legacy
// answers stored before answer ids were assigned.
type Answer struct {
	ID     int64  `json:"_id,omitempty"`
	UserID string `json:"user_id,omitempty"`
	Answer string `json:"answer"`
}

// HasID reports whether the answer has been assigned an id.
func (a Answer) HasID() bool {
	return a.ID > 0
}

// AnswerInput carries the caller controlled fields of an answer.
type AnswerInput struct {
	UserID string `json:"user_id,omitempty"`
	Answer string `json:"answer"`
}

// Item is a quiz question. ID always equals QuestionNumber.
type Item struct {
	ID             int64    `json:"id"`
	QuestionNumber int64    `json:"question_number"`
	Description    string   `json:"description"`
	Answers        []Answer `json:"answers"`
	// Version increases on every write and backs optimistic updates of Answers.
	Version int64 `json:"-"`
}

// Clone returns a copy that shares no answer storage with the receiver.
func (i Item) Clone() Item {
	out := i
	out.Answers = make([]Answer, len(i.Answers))
	copy(out.Answers, i.Answers)
	return out
}

// ItemInput is the payload for creating an item.
type ItemInput struct {
	ID             int64  `json:"id"`
	QuestionNumber int64  `json:"question_number"`
	Description    string `json:"description"`
}

// ItemPatch holds the optional fields of a partial item update. Nil fields are left untouched.
type ItemPatch struct {
	QuestionNumber *int64  `json:"question_number,omitempty"`
	Description    *string `json:"description,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p ItemPatch) Empty() bool {
	return p.QuestionNumber == nil && p.Description == nil
}

// Counter names one of the metric counters.
type Counter string

const (
	CounterResponses        Counter = "responses"
	CounterResponsesEdited  Counter = "responses_edited"
	CounterResponsesDeleted Counter = "responses_deleted"
)

// Valid reports whether c is a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterResponses, CounterResponsesEdited, CounterResponsesDeleted:
		return true
	}
	return false
}

// Metric aggregates answer activity for one question.
type Metric struct {
	ID               int64 `json:"id"`
	QuestionID       int64 `json:"question_id"`
	Responses        int64 `json:"responses"`
	ResponsesEdited  int64 `json:"responses_edited"`
	ResponsesDeleted int64 `json:"responses_deleted"`
}

// Add increments counter c by delta.
func (m *Metric) Add(c Counter, delta int64) {
	switch c {
	case CounterResponses:
		m.Responses += delta
	case CounterResponsesEdited:
		m.ResponsesEdited += delta
	case CounterResponsesDeleted:
		m.ResponsesDeleted += delta
	}
}

// User is a registered account. The password hash never leaves the service.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserPatch holds the optional fields of a user update.
type UserPatch struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Challenge is a free-form environmental challenge shown alongside the quiz.
type Challenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChallengePatch holds the optional fields of a challenge update.
type ChallengePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
