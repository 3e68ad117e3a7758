package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/service"
)

// handleQuiz resumes the user's open quiz or starts a new one.
func (h *Handler) handleQuiz(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.forgetReminder(userID)

		session, err := h.quizService.Resume(ctx, userID)
		switch {
		case err == nil:
			h.logger.Debug("resuming quiz",
				zap.Int64("user_id", userID),
				zap.String("session_id", session.ID),
				zap.Int("current_index", session.CurrentIndex),
			)
			h.timers.Cancel(session.ID)
			h.deleteMessage(chatID, session.MessageID)
			return h.sendQuestion(ctx, chatID, session, msgQuizResumed)

		case errors.Is(err, service.ErrCatalogChanged):
			h.sendText(chatID, msgCatalogChanged)

		case !errors.Is(err, service.ErrSessionNotFound):
			return err
		}

		return h.startQuiz(ctx, chatID, userID)
	}
}

func (h *Handler) startQuiz(ctx context.Context, chatID, userID int64) error {
	if prev, err := h.quizService.Resume(ctx, userID); err == nil {
		h.timers.Cancel(prev.ID)
	}

	session, err := h.quizService.Start(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	h.forgetReminder(userID)
	return h.sendQuestion(ctx, chatID, session, "")
}

// sendQuestion sends the current question as a new message and remembers it on the session.
func (h *Handler) sendQuestion(ctx context.Context, chatID int64, session *entities.QuizSession, notice string) error {
	text, kb, err := h.questionScreen(session, 0, notice)
	if err != nil {
		return err
	}

	msg := newHTMLMessage(chatID, text)
	msg.ReplyMarkup = kb
	sent, ok := h.send(msg)
	if !ok {
		return nil
	}

	return h.quizService.SetMessageID(ctx, session, sent.MessageID)
}

// editQuestion redraws the question screen in place.
func (h *Handler) editQuestion(chatID int64, messageID int, session *entities.QuizSession, countdown int, notice string) error {
	text, kb, err := h.questionScreen(session, countdown, notice)
	if err != nil {
		return err
	}

	h.send(newHTMLEdit(chatID, messageID, text, &kb))
	return nil
}

func (h *Handler) questionScreen(session *entities.QuizSession, countdown int, notice string) (string, tgbotapi.InlineKeyboardMarkup, error) {
	catalog := h.quizService.Catalog()

	q, ok := catalog.Question(session.CurrentIndex)
	if !ok {
		return "", tgbotapi.InlineKeyboardMarkup{}, fmt.Errorf("question %d: %w", session.CurrentIndex, scoring.ErrInvalidAnswerIndex)
	}

	trend, err := h.quizService.Trend(session)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, fmt.Errorf("trend: %w", err)
	}

	text, kb := renderQuestion(questionView{
		Session:   session,
		Question:  q,
		Total:     catalog.Len(),
		Trend:     trend,
		Countdown: countdown,
		Notice:    notice,
	})
	return text, kb, nil
}

// handleQuizCallback dispatches quiz:* callbacks. The returned text is shown as a toast.
func (h *Handler) handleQuizCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch data.param(0) {
	case quizStart:
		return "", h.startQuiz(ctx, chatID, userID)

	case quizResume:
		return "", h.handleQuiz(userID)(ctx, chatID)

	case quizAnswer:
		return h.handleAnswer(ctx, cb, data)

	case quizNext:
		sessionID := data.param(1)
		h.timers.Cancel(sessionID)

		session, err := h.quizService.Next(ctx, userID, sessionID)
		if errors.Is(err, service.ErrNoMoreQuestions) {
			return msgLastQuestion, nil
		}
		if err != nil {
			return "", err
		}
		return "", h.editQuestion(chatID, messageID, session, 0, "")

	case quizPrev:
		sessionID := data.param(1)
		h.timers.Cancel(sessionID)

		session, err := h.quizService.Previous(ctx, userID, sessionID)
		if err != nil {
			return "", err
		}
		return "", h.editQuestion(chatID, messageID, session, 0, "")

	case quizAuto:
		sessionID := data.param(1)
		h.timers.Cancel(sessionID)

		session, err := h.quizService.SetAutoAdvance(ctx, userID, sessionID, data.param(2) == valueOn)
		if err != nil {
			return "", err
		}
		return "", h.editQuestion(chatID, messageID, session, 0, "")

	case quizSubmit:
		sessionID := data.param(1)
		h.timers.Cancel(sessionID)

		res, err := h.quizService.Submit(ctx, userID, sessionID)
		if err != nil {
			return "", err
		}

		kb := buildResultKeyboard()
		h.send(newHTMLEdit(chatID, messageID, renderResult(res), &kb))
		return "", nil

	default:
		h.logger.Warn("unknown quiz callback", zap.String("data", data.Raw))
		return "", nil
	}
}

func (h *Handler) handleAnswer(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	sessionID := data.param(1)

	questionIndex, ok1 := data.intParam(2)
	optionIndex, ok2 := data.intParam(3)
	if !ok1 || !ok2 {
		h.logger.Warn("invalid answer callback", zap.String("data", data.Raw))
		return msgInvalidAnswer, nil
	}

	h.timers.Cancel(sessionID)

	// An out-of-range option resolves to "" and is rejected by the scoring engine.
	var optionID string
	if q, ok := h.quizService.Catalog().Question(questionIndex); ok && optionIndex < len(q.Options) {
		optionID = q.Options[optionIndex].ID
	}

	session, err := h.quizService.RecordAnswer(ctx, userID, sessionID, questionIndex, optionID)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidAnswerIndex) || errors.Is(err, scoring.ErrInvalidAnswerOption) {
			// Re-prompt with the current state of the session.
			if current, getErr := h.quizService.GetSession(ctx, userID, sessionID); getErr == nil {
				_ = h.editQuestion(chatID, messageID, current, 0, msgInvalidAnswer)
			}
			return msgInvalidAnswer, nil
		}
		return "", err
	}

	total := h.quizService.Catalog().Len()
	switch {
	case session.IsLast(total):
		return "", h.editQuestion(chatID, messageID, session, 0, msgLastQuestion)
	case session.AutoAdvance:
		delay := h.autoAdvanceDelay(ctx, userID)
		h.scheduleAdvance(ctx, chatID, messageID, session, delay)
		return "", h.editQuestion(chatID, messageID, session, int(delay/time.Second), "")
	default:
		return "", h.editQuestion(chatID, messageID, session, 0, "")
	}
}

func (h *Handler) autoAdvanceDelay(ctx context.Context, userID int64) time.Duration {
	settings, err := h.settingsService.GetOrCreate(ctx, userID)
	if err != nil || !entities.IsValidAutoAdvanceDelay(settings.AutoAdvanceDelay) {
		return h.defaultDelay
	}
	return time.Duration(settings.AutoAdvanceDelay) * time.Second
}

// scheduleAdvance moves the session to the next question after delay and
// redraws the countdown every second until then.
func (h *Handler) scheduleAdvance(ctx context.Context, chatID int64, messageID int, snapshot *entities.QuizSession, delay time.Duration) {
	sessionID := snapshot.ID
	userID := snapshot.UserID

	// Written under h.mu before any callback can take the lock.
	var countdownID uint64

	onTick := func(remaining int) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if !h.timers.Current(sessionID, countdownID) {
			return
		}
		session, err := h.quizService.GetSession(ctx, userID, sessionID)
		if err != nil || !session.IsActive() {
			return
		}
		_ = h.editQuestion(chatID, messageID, session, remaining, "")
	}

	onFire := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		// A newer countdown was scheduled while this one waited for the lock.
		if h.timers.Pending(sessionID) {
			return
		}

		session, err := h.quizService.Next(ctx, userID, sessionID)
		if err != nil {
			if !errors.Is(err, service.ErrNoMoreQuestions) {
				h.logger.Debug("auto-advance skipped",
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
				return
			}
		}

		if err := h.editQuestion(chatID, messageID, session, 0, ""); err != nil {
			h.logger.Error("failed to render auto-advanced question",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}

	countdownID = h.timers.Schedule(sessionID, delay, onTick, onFire)
}

func (h *Handler) handleResult(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		res, err := h.resultService.Latest(ctx, userID)
		if err != nil {
			if errors.Is(err, service.ErrNoResult) {
				msg := newHTMLMessage(chatID, msgNoResult)
				msg.ReplyMarkup = buildStartKeyboard()
				h.send(msg)
				return nil
			}
			return err
		}

		msg := newHTMLMessage(chatID, renderResult(res))
		msg.ReplyMarkup = buildResultKeyboard()
		h.send(msg)
		return nil
	}
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	h.request(tgbotapi.NewDeleteMessage(chatID, messageID))
}
