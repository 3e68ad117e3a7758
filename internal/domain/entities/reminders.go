package entities

import "time"

// ReminderPayload is used to build a "finish your assessment" reminder message.
type ReminderPayload struct {
	SessionID string
	Answered  int // questions answered so far
	Total     int // questions in the catalog
	Leading   Dosha
	IdleFor   time.Duration
}

// Remaining returns the number of unanswered questions.
func (p ReminderPayload) Remaining() int {
	if p.Total < p.Answered {
		return 0
	}
	return p.Total - p.Answered
}

// NeedsReminder reports whether the session has been idle long enough and has
// not been nudged since its last activity.
func (qs *QuizSession) NeedsReminder(now time.Time, idleAfter time.Duration) bool {
	if !qs.IsActive() {
		return false
	}
	if now.Sub(qs.UpdatedAt) < idleAfter {
		return false
	}
	return qs.RemindedAt == nil || qs.RemindedAt.Before(qs.UpdatedAt)
}
