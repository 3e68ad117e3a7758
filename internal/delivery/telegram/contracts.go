package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type UserService interface {
	EnsureUser(ctx context.Context, userID, chatID int64, firstName string) (bool, error)
}

type SettingsService interface {
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error)
	SetAutoAdvance(ctx context.Context, userID int64, enabled bool) error
	SetAutoAdvanceDelay(ctx context.Context, userID int64, seconds int) error
	ToggleReminders(ctx context.Context, userID int64) (bool, error)
}

type QuizService interface {
	Catalog() *entities.Catalog
	Start(ctx context.Context, userID, chatID int64) (*entities.QuizSession, error)
	Resume(ctx context.Context, userID int64) (*entities.QuizSession, error)
	GetSession(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error)
	RecordAnswer(ctx context.Context, userID int64, sessionID string, questionIndex int, optionID string) (*entities.QuizSession, error)
	Next(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error)
	Previous(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error)
	SetAutoAdvance(ctx context.Context, userID int64, sessionID string, on bool) (*entities.QuizSession, error)
	SetMessageID(ctx context.Context, session *entities.QuizSession, messageID int) error
	Trend(session *entities.QuizSession) (entities.Tally, error)
	Submit(ctx context.Context, userID int64, sessionID string) (*entities.Result, error)
}

type ResultService interface {
	Latest(ctx context.Context, userID int64) (*entities.Result, error)
}

type ResetService interface {
	ResetUser(ctx context.Context, userID int64) error
}

// AutoAdvancer schedules per-session countdowns.
type AutoAdvancer interface {
	Schedule(sessionID string, delay time.Duration, onTick func(remaining int), onFire func()) uint64
	Cancel(sessionID string)
	Pending(sessionID string) bool
	Current(sessionID string, id uint64) bool
}
