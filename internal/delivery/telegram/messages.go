// messages.go contains message templates for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Error messages.
const (
	msgInternalError       = "Something went wrong. Please try again later."
	msgUnknownCommand      = "Unknown command. Send /help to see what I can do."
	msgInvalidAnswer       = "That option is not available for this question. Please choose again."
	msgEmptyQuiz           = "Answer at least one question before submitting."
	msgSessionExpired      = "This quiz is no longer active. Start a new one with /quiz."
	msgCatalogChanged      = "The questionnaire was updated since you started. Please start the quiz again."
	msgNoResult            = "You have no result yet. Take the quiz with /quiz."
	msgSettingsUnavailable = "Could not load settings. Please try again later."
	msgInvalidDelay        = "Pick one of the offered delays."
)

// Informational messages.
const (
	msgHelp = "<b>Commands</b>\n\n" +
		"/quiz - start or continue the Prakriti quiz\n" +
		"/result - show your latest result\n" +
		"/settings - auto-advance and reminders\n" +
		"/reset - delete your result and restore default settings\n" +
		"/help - this message"
	msgResetConfirm   = "This deletes your stored result and restores default settings. Continue?"
	msgResetDone      = "Done. Your data was reset."
	msgResetCancelled = "Reset cancelled."
	msgQuizResumed    = "Continuing your quiz."
	msgLastQuestion   = "That was the last question. Submit when you are ready."
)

func msgWelcome(firstName string) string {
	var sb strings.Builder

	sb.WriteString("Namaste")
	if firstName != "" {
		sb.WriteString(", ")
		sb.WriteString(escape(firstName))
	}
	sb.WriteString("!\n\n")
	sb.WriteString("<b>ekaBrahmaa Prakriti</b> helps you discover your Ayurvedic constitution. ")
	sb.WriteString("Answer questions about your body, mind, habits, digestion and emotions, ")
	sb.WriteString("and get your vata, pitta and kapha distribution.\n\n")
	sb.WriteString("Send /quiz to begin or /help for all commands.")

	return sb.String()
}

func msgWelcomeBack(firstName string) string {
	var sb strings.Builder

	sb.WriteString("Welcome back")
	if firstName != "" {
		sb.WriteString(", ")
		sb.WriteString(escape(firstName))
	}
	sb.WriteString("!\n\n")
	sb.WriteString("Send /quiz to continue your assessment or /result to see your last result.")

	return sb.String()
}

func msgReminder(answered, remaining int) string {
	return fmt.Sprintf(
		"🌿 You answered %d questions of your Prakriti quiz. %d left to see your result.",
		answered,
		remaining,
	)
}

// escape escapes plain text for HTML parse mode.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
