package telegram

import (
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

// SendReminder implements service.ReminderNotifier. The previous reminder of
// the user is deleted so the chat holds at most one.
func (h *Handler) SendReminder(userID, chatID int64, payload entities.ReminderPayload) error {
	text := msgReminder(payload.Answered, payload.Remaining())
	if payload.Leading != "" {
		text += "\nSo far " + payload.Leading.Title() + " leads."
	}

	msg := newHTMLMessage(chatID, text)
	msg.ReplyMarkup = buildReminderKeyboard()

	sent, err := h.bot.Send(msg)
	if err != nil {
		return err
	}

	prev, hadPrev := h.reminders.Swap(userID, storage.ReminderMessage{
		ChatID:    chatID,
		MessageID: sent.MessageID,
		SessionID: payload.SessionID,
	})
	if hadPrev {
		h.deleteMessage(prev.ChatID, prev.MessageID)
	}

	h.logger.Debug("reminder delivered",
		zap.Int64("user_id", userID),
		zap.String("session_id", payload.SessionID),
	)

	return nil
}

// forgetReminder removes the pending reminder message of the user, if any.
func (h *Handler) forgetReminder(userID int64) {
	if prev, ok := h.reminders.Take(userID); ok {
		h.deleteMessage(prev.ChatID, prev.MessageID)
	}
}
