package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/metrics"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

type Handler struct {
	bot             BotAPI
	logger          *zap.Logger
	userService     UserService
	settingsService SettingsService
	quizService     QuizService
	resultService   ResultService
	resetService    ResetService
	timers          AutoAdvancer
	reminders       *storage.ReminderStorage
	defaultDelay    time.Duration

	// mu serializes update handling with countdown callbacks.
	mu sync.Mutex
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	userService UserService,
	settingsService SettingsService,
	quizService QuizService,
	resultService ResultService,
	resetService ResetService,
	timers AutoAdvancer,
	reminders *storage.ReminderStorage,
	defaultDelay time.Duration,
) *Handler {
	return &Handler{
		bot:             bot,
		logger:          logger,
		userService:     userService,
		settingsService: settingsService,
		quizService:     quizService,
		resultService:   resultService,
		resetService:    resetService,
		timers:          timers,
		reminders:       reminders,
		defaultDelay:    defaultDelay,
	}
}

// RegisterCommands publishes the command list shown in the Telegram menu.
func (h *Handler) RegisterCommands() error {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "quiz", Description: "Start or continue the Prakriti quiz"},
		{Command: "result", Description: "Show your latest result"},
		{Command: "settings", Description: "Settings"},
		{Command: "reset", Description: "Reset your data"},
		{Command: "help", Description: "Help"},
	}

	_, err := h.bot.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	kind := "other"
	defer func() {
		metrics.UpdateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	if update.CallbackQuery != nil {
		kind = "callback"
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	kind = "message"
	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	isNew, err := h.userService.EnsureUser(ctx, from.ID, chatID, from.FirstName)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if !update.Message.IsCommand() {
		h.sendText(chatID, msgUnknownCommand)
		return
	}

	kind = "command"
	switch update.Message.Command() {
	case "start":
		text := msgWelcome(from.FirstName)
		if err == nil && !isNew {
			text = msgWelcomeBack(from.FirstName)
		}
		msg := newHTMLMessage(chatID, text)
		msg.ReplyMarkup = buildStartKeyboard()
		h.send(msg)

	case "quiz":
		_ = h.withErrorHandling(h.handleQuiz(from.ID))(ctx, chatID)

	case "result":
		_ = h.withErrorHandling(h.handleResult(from.ID))(ctx, chatID)

	case "settings":
		_ = h.withErrorHandling(h.handleSettings(from.ID))(ctx, chatID)

	case "reset":
		msg := newHTMLMessage(chatID, msgResetConfirm)
		msg.ReplyMarkup = buildResetKeyboard()
		h.send(msg)

	case "help":
		h.sendText(chatID, msgHelp)

	default:
		h.sendText(chatID, msgUnknownCommand)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) sendError(chatID int64, text string) {
	h.sendText(chatID, text)
}

// send delivers c and returns the sent message. Failures are logged.
func (h *Handler) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	msg, err := h.bot.Send(c)
	if err != nil {
		if isNotModified(err) {
			return msg, true
		}
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return msg, false
	}
	return msg, true
}

// request performs a call whose result is not a message (callback answers, deletions).
func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.Debug("telegram request failed", zap.Error(err))
	}
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
