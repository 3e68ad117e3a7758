package entities

import (
	"time"
)

// SessionStatus is the state of a quiz session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress" // answers are being collected
	StatusSubmitting SessionStatus = "submitting"  // finalization is running
	StatusCompleted  SessionStatus = "completed"   // terminal, result stored
	StatusAbandoned  SessionStatus = "abandoned"   // replaced by a newer session or reset
)

// QuizSession represents a single Prakriti quiz run for a user.
// It tracks the current question, the answer set and the session status.
type QuizSession struct {
	ID             string        `json:"id"`              // unique session ID
	UserID         int64         `json:"user_id"`         // user who started the quiz
	ChatID         int64         `json:"chat_id"`         // chat the quiz is displayed in
	MessageID      int           `json:"message_id"`      // message that renders the current question
	Status         SessionStatus `json:"status"`          // session status
	CurrentIndex   int           `json:"current_index"`   // zero-based index of the displayed question
	Answers        AnswerSet     `json:"answers"`         // selected option IDs, one slot per question
	AutoAdvance    bool          `json:"auto_advance"`    // advance automatically after an answer
	CatalogVersion string        `json:"catalog_version"` // catalog the answers refer to
	StartedAt      time.Time     `json:"started_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	RemindedAt     *time.Time    `json:"reminded_at,omitempty"` // last "finish your quiz" nudge, nullable
}

// NewQuizSession creates a new in-progress session positioned at the first question.
func NewQuizSession(id string, userID, chatID int64, totalQuestions int, catalogVersion string) *QuizSession {
	now := time.Now()
	return &QuizSession{
		ID:             id,
		UserID:         userID,
		ChatID:         chatID,
		Status:         StatusInProgress,
		CurrentIndex:   0,
		Answers:        NewAnswerSet(totalQuestions),
		CatalogVersion: catalogVersion,
		StartedAt:      now,
		UpdatedAt:      now,
	}
}

// IsActive reports whether answers can still be recorded.
func (qs *QuizSession) IsActive() bool {
	return qs.Status == StatusInProgress
}

// Next moves to the following question. It returns false on the last question.
func (qs *QuizSession) Next(total int) bool {
	if qs.CurrentIndex >= total-1 {
		return false
	}
	qs.CurrentIndex++
	qs.touch()
	return true
}

// Previous moves one question back, keeping recorded answers. It returns false on the first question.
func (qs *QuizSession) Previous() bool {
	if qs.CurrentIndex <= 0 {
		return false
	}
	qs.CurrentIndex--
	qs.touch()
	return true
}

// SetAnswers replaces the answer set and moves to the answered question.
func (qs *QuizSession) SetAnswers(answers AnswerSet, index int) {
	qs.Answers = answers
	qs.CurrentIndex = index
	qs.touch()
}

// BeginSubmit transitions InProgress -> Submitting.
func (qs *QuizSession) BeginSubmit() bool {
	if qs.Status != StatusInProgress {
		return false
	}
	qs.Status = StatusSubmitting
	qs.touch()
	return true
}

// CancelSubmit returns a submitting session to InProgress, e.g. when finalization rejected the answers.
func (qs *QuizSession) CancelSubmit() {
	if qs.Status == StatusSubmitting {
		qs.Status = StatusInProgress
		qs.touch()
	}
}

// Complete marks the session as completed. Completed is terminal.
func (qs *QuizSession) Complete() {
	qs.Status = StatusCompleted
	qs.touch()
}

// Abandon marks the session as abandoned.
func (qs *QuizSession) Abandon() {
	qs.Status = StatusAbandoned
	qs.touch()
}

// IsLast reports whether the current question is the last one.
func (qs *QuizSession) IsLast(total int) bool {
	return qs.CurrentIndex >= total-1
}

func (qs *QuizSession) touch() {
	qs.UpdatedAt = time.Now()
}
