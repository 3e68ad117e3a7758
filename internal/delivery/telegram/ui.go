package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

// buildQuestionKeyboard builds options, navigation, auto-advance and submit rows.
func buildQuestionKeyboard(session *entities.QuizSession, q entities.Question, selected string, total int) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options)+3)

	for i, o := range q.Options {
		label := o.Text
		if o.ID == selected {
			label = "✅ " + label
		}
		data := buildQuizAnswerCallback(session.ID, session.CurrentIndex, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if session.CurrentIndex > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Back", buildQuizNavCallback(quizPrev, session.ID)))
	}
	if !session.IsLast(total) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildQuizNavCallback(quizNext, session.ID)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	autoLabel := "⏭ Auto-advance: off"
	if session.AutoAdvance {
		autoLabel = "⏭ Auto-advance: on"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(autoLabel, buildQuizAutoCallback(session.ID, !session.AutoAdvance)),
	))

	submitLabel := fmt.Sprintf("🧾 Submit (%d/%d)", session.Answers.Answered(), total)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(submitLabel, buildQuizNavCallback(quizSubmit, session.ID)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildResultKeyboard builds keyboard for the result screen.
func buildResultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Retake quiz", buildQuizStartCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Settings", buildSettingsCallback(settingsMenu)),
		),
	)
}

func buildStartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌿 Start quiz", buildQuizStartCallback()),
		),
	)
}

func buildReminderKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Continue quiz", buildQuizResumeCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Turn off reminders", buildSettingsCallback(settingsReminders)),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(s *entities.UserSettings) tgbotapi.InlineKeyboardMarkup {
	autoLabel := "⏭ Turn auto-advance on"
	if s.AutoAdvance {
		autoLabel = "⏭ Turn auto-advance off"
	}

	delays := make([]tgbotapi.InlineKeyboardButton, 0, len(entities.AutoAdvanceDelays))
	for _, d := range entities.AutoAdvanceDelays {
		label := strconv.Itoa(d) + "s"
		if d == s.AutoAdvanceDelay {
			label = "• " + label + " •"
		}
		delays = append(delays, tgbotapi.NewInlineKeyboardButtonData(label, buildSettingsCallback(settingsDelay, strconv.Itoa(d))))
	}

	remindersLabel := "🔔 Turn reminders on"
	if s.RemindersEnabled {
		remindersLabel = "🔕 Turn reminders off"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(autoLabel, buildSettingsCallback(settingsAutoAdvance, onOff(!s.AutoAdvance))),
		),
		delays,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(remindersLabel, buildSettingsCallback(settingsReminders)),
		),
	)
}

func buildResetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, reset", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", buildResetCancelCallback()),
		),
	)
}
