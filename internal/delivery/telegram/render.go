package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

const barLength = 10

// questionView holds everything needed to draw the question screen.
type questionView struct {
	Session   *entities.QuizSession
	Question  entities.Question
	Total     int
	Trend     entities.Tally
	Countdown int    // seconds until auto-advance, 0 when no countdown runs
	Notice    string // optional line under the question
}

// renderQuestion renders the question screen with its keyboard.
func renderQuestion(v questionView) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>%s</b> · Question %d/%d\n\n", escape(v.Question.Category), v.Session.CurrentIndex+1, v.Total)
	sb.WriteString(escape(v.Question.Text))
	sb.WriteString("\n\n")

	answered := v.Session.Answers.Answered()
	fmt.Fprintf(&sb, "%s %d/%d answered\n", buildProgressBar(answered, v.Total, barLength), answered, v.Total)

	if trend := renderTrend(v.Trend); trend != "" {
		sb.WriteString(trend)
		sb.WriteString("\n")
	}

	if v.Countdown > 0 {
		fmt.Fprintf(&sb, "\n⏳ Next question in %ds", v.Countdown)
	}
	if v.Notice != "" {
		sb.WriteString("\n")
		sb.WriteString(escape(v.Notice))
	}

	selected := v.Session.Answers.At(v.Session.CurrentIndex)
	return strings.TrimRight(sb.String(), "\n"), buildQuestionKeyboard(v.Session, v.Question, selected, v.Total)
}

// renderTrend renders the running tally, e.g. "Trend: Vata 3 · Pitta 1 · Kapha 0".
func renderTrend(t entities.Tally) string {
	if _, ok := t.Leading(); !ok {
		return ""
	}

	parts := make([]string, 0, len(entities.Doshas))
	for _, d := range entities.Doshas {
		parts = append(parts, fmt.Sprintf("%s %d", d.Title(), t[d]))
	}
	return "Trend: " + strings.Join(parts, " · ")
}

// renderResult renders a finalized result.
func renderResult(r *entities.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Your Prakriti: %s</b>\n\n", escape(r.Constitution()))

	for _, d := range r.Sorted() {
		pct := r.Percentages[d]
		fmt.Fprintf(&sb, "%s %s %d%%\n", buildProgressBar(pct, 100, barLength), d.Title(), pct)
	}

	fmt.Fprintf(&sb, "\nDominant dosha: <b>%s</b>\n", r.Dominant.Title())
	switch {
	case r.Tridoshic:
		sb.WriteString("All three doshas are close to balanced.\n")
	case r.Dual:
		sorted := r.Sorted()
		fmt.Fprintf(&sb, "%s and %s are nearly equal.\n", sorted[0].Title(), sorted[1].Title())
	}

	fmt.Fprintf(&sb, "\nBased on %d of %d questions.", r.Answered, r.Total)
	if !r.CompletedAt.IsZero() {
		fmt.Fprintf(&sb, "\nCompleted %s.", r.CompletedAt.UTC().Format("2 Jan 2006"))
	}

	return sb.String()
}

// renderSettings renders the settings screen with its keyboard.
func renderSettings(s *entities.UserSettings) (string, tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"<b>⚙️ Settings</b>\n\n"+
			"⏭ <b>Auto-advance:</b> %s\n"+
			"⏳ <b>Delay:</b> %ds\n"+
			"🔔 <b>Reminders:</b> %s",
		formatBool(s.AutoAdvance),
		s.AutoAdvanceDelay,
		formatBool(s.RemindersEnabled),
	)
	return text, buildSettingsKeyboard(s)
}

func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return strings.Repeat("░", length)
	}
	filled := current * length / total
	if filled > length {
		filled = length
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

func formatBool(b bool) string {
	if b {
		return "on ✅"
	}
	return "off ❌"
}
