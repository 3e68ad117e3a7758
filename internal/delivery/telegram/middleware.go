package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if err := fn(ctx, chatID); err != nil {
			text, known := userMessage(err)
			if known {
				h.logger.Debug("request rejected",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			} else {
				h.logger.Error("handle error",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			}
			h.sendError(chatID, text)
			return nil
		}
		return nil
	}
}

// userMessage maps an error to the text shown to the user.
// known is false for unexpected errors.
func userMessage(err error) (text string, known bool) {
	switch {
	case errors.Is(err, scoring.ErrInvalidAnswerIndex), errors.Is(err, scoring.ErrInvalidAnswerOption):
		return msgInvalidAnswer, true
	case errors.Is(err, scoring.ErrEmptyQuiz):
		return msgEmptyQuiz, true
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionNotActive):
		return msgSessionExpired, true
	case errors.Is(err, service.ErrCatalogChanged):
		return msgCatalogChanged, true
	case errors.Is(err, service.ErrNoResult):
		return msgNoResult, true
	case errors.Is(err, service.ErrInvalidAutoAdvanceDelay):
		return msgInvalidDelay, true
	default:
		return msgInternalError, false
	}
}
