package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		h.request(tgbotapi.NewCallback(cb.ID, ""))
		return
	}

	data := decodeCallback(cb.Data)

	var (
		toast string
		err   error
	)

	switch data.Action {
	case actionQuiz:
		toast, err = h.handleQuizCallback(ctx, cb, data)
	case actionSettings:
		toast, err = h.handleSettingsCallback(ctx, cb, data)
	case actionReset:
		toast, err = h.handleResetCallback(ctx, cb, data)
	case actionResult:
		err = h.handleResult(cb.From.ID)(ctx, cb.Message.Chat.ID)
	default:
		h.logger.Warn("unknown callback", zap.String("data", cb.Data))
	}

	if err != nil {
		text, known := userMessage(err)
		if !known {
			h.logger.Error("callback error",
				zap.Int64("user_id", cb.From.ID),
				zap.String("data", cb.Data),
				zap.Error(err),
			)
		}
		toast = text
	}

	// Remove the user's "clock".
	h.request(tgbotapi.NewCallback(cb.ID, toast))
}

func (h *Handler) handleResetCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch data.param(0) {
	case resetConfirm:
		if session, err := h.quizService.Resume(ctx, userID); err == nil {
			h.timers.Cancel(session.ID)
			h.deleteMessage(chatID, session.MessageID)
		}

		if err := h.resetService.ResetUser(ctx, userID); err != nil {
			return "", err
		}
		h.forgetReminder(userID)

		h.logger.Info("user data reset", zap.Int64("user_id", userID))
		h.send(newHTMLEdit(chatID, messageID, msgResetDone, nil))
		return "", nil

	case resetCancel:
		h.send(newHTMLEdit(chatID, messageID, msgResetCancelled, nil))
		return "", nil

	default:
		return "", nil
	}
}
