package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (h *Handler) handleSettings(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		h.logger.Debug("rendering settings", zap.Int64("user_id", userID))

		settings, err := h.settingsService.GetOrCreate(ctx, userID)
		if err != nil {
			h.logger.Error("failed to get settings",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.sendText(chatID, msgSettingsUnavailable)
			return nil
		}

		text, kb := renderSettings(settings)
		msg := newHTMLMessage(chatID, text)
		msg.ReplyMarkup = kb
		h.send(msg)
		return nil
	}
}

func (h *Handler) handleSettingsCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, data callbackData) (string, error) {
	userID := cb.From.ID
	var toast string

	switch data.param(0) {
	case settingsMenu:

	case settingsAutoAdvance:
		if err := h.settingsService.SetAutoAdvance(ctx, userID, data.param(1) == valueOn); err != nil {
			return "", err
		}

	case settingsDelay:
		seconds, err := strconv.Atoi(data.param(1))
		if err != nil {
			return msgInvalidDelay, nil
		}
		if err := h.settingsService.SetAutoAdvanceDelay(ctx, userID, seconds); err != nil {
			return "", err
		}

	case settingsReminders:
		enabled, err := h.settingsService.ToggleReminders(ctx, userID)
		if err != nil {
			return "", err
		}
		toast = "Reminders " + formatBool(enabled)

	default:
		h.logger.Warn("unknown settings callback", zap.String("data", data.Raw))
		return "", nil
	}

	settings, err := h.settingsService.GetOrCreate(ctx, userID)
	if err != nil {
		return "", err
	}

	text, kb := renderSettings(settings)
	h.send(newHTMLEdit(cb.Message.Chat.ID, cb.Message.MessageID, text, &kb))

	return toast, nil
}
