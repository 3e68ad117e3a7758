package entities

import "time"

const (
	DefaultAutoAdvanceDelay = 5 // seconds
)

// AutoAdvanceDelays lists the delays a user can pick, in seconds.
var AutoAdvanceDelays = []int{3, 5, 10}

// UserSettings stores user preferences for the quiz flow.
type UserSettings struct {
	UserID           int64
	AutoAdvance      bool // advance to the next question after a countdown
	AutoAdvanceDelay int  // countdown length in seconds
	RemindersEnabled bool // nudge about unfinished quizzes
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewUserSettings creates a new UserSettings instance with default values.
func NewUserSettings(userID int64) *UserSettings {
	now := time.Now()
	return &UserSettings{
		UserID:           userID,
		AutoAdvance:      false,
		AutoAdvanceDelay: DefaultAutoAdvanceDelay,
		RemindersEnabled: true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsValidAutoAdvanceDelay reports whether seconds is one of the selectable delays.
func IsValidAutoAdvanceDelay(seconds int) bool {
	for _, d := range AutoAdvanceDelays {
		if d == seconds {
			return true
		}
	}
	return false
}
