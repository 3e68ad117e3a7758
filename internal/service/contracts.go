package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entities.User) (bool, error)
}

type SettingsRepository interface {
	Create(ctx context.Context, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error)
	UpdateAutoAdvance(ctx context.Context, userID int64, enabled bool) error
	UpdateAutoAdvanceDelay(ctx context.Context, userID int64, seconds int) error
	UpdateReminders(ctx context.Context, userID int64, enabled bool) error
}

type ResultRepository interface {
	Upsert(ctx context.Context, res *entities.Result) error
	GetByUserID(ctx context.Context, userID int64) (*entities.Result, error)
}

// SessionStore keeps in-progress quiz sessions.
type SessionStore interface {
	Save(ctx context.Context, session *entities.QuizSession) error
	Get(ctx context.Context, sessionID string) (*entities.QuizSession, error)
	GetActiveByUser(ctx context.Context, userID int64) (*entities.QuizSession, error)
	Delete(ctx context.Context, sessionID string) error
	ListActive(ctx context.Context) ([]*entities.QuizSession, error)
	PurgeExpired(ctx context.Context) (int, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// ReminderNotifier sends reminder notifications to users.
type ReminderNotifier interface {
	SendReminder(userID, chatID int64, payload entities.ReminderPayload) error
}
