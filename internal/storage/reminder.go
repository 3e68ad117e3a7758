package storage

import (
	"sync"
	"time"
)

// ReminderMessage points at the last reminder sent to a user.
type ReminderMessage struct {
	ChatID    int64
	MessageID int
	SessionID string
	SentAt    time.Time
}

// ReminderStorage remembers the last reminder per user so it can be removed
// once a newer one is sent or the quiz is resumed.
type ReminderStorage struct {
	mu       sync.Mutex
	messages map[int64]ReminderMessage
}

func NewReminderStorage() *ReminderStorage {
	return &ReminderStorage{
		messages: make(map[int64]ReminderMessage),
	}
}

// Swap stores msg for the user and returns the message it replaced.
func (s *ReminderStorage) Swap(userID int64, msg ReminderMessage) (prev ReminderMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[userID]
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	s.messages[userID] = msg

	return prev, hadPrev
}

// Take removes and returns the user's last reminder.
func (s *ReminderStorage) Take(userID int64) (ReminderMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[userID]
	delete(s.messages, userID)
	return msg, ok
}
