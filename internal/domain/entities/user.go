package entities

import "time"

// User is a Telegram user who talked to the bot.
type User struct {
	ID         int64 // Telegram user ID
	ChatID     int64 // private chat quizzes and reminders go to
	FirstName  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func NewUser(id, chatID int64, firstName string) *User {
	return &User{
		ID:        id,
		ChatID:    chatID,
		FirstName: firstName,
	}
}
