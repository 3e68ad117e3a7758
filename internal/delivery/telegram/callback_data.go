package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionQuiz     = "quiz"
	actionSettings = "settings"
	actionReset    = "reset"
	actionResult   = "result"
)

// Quiz sub-actions.
const (
	quizStart  = "start"
	quizResume = "resume"
	quizAnswer = "answer"
	quizNext   = "next"
	quizPrev   = "prev"
	quizSubmit = "submit"
	quizAuto   = "auto"
)

// Settings sub-actions.
const (
	settingsMenu        = "menu"
	settingsAutoAdvance = "auto"
	settingsDelay       = "delay"
	settingsReminders   = "reminders"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

const (
	valueOn  = "on"
	valueOff = "off"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as a non-negative integer.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func onOff(b bool) string {
	if b {
		return valueOn
	}
	return valueOff
}

func buildQuizStartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizStart}}.encode()
}

func buildQuizResumeCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizResume}}.encode()
}

// buildQuizAnswerCallback builds callback data for answering a quiz question.
// The option is referenced by position to stay within the 64 byte limit; the
// handler resolves it to the option ID against the catalog.
func buildQuizAnswerCallback(sessionID string, questionIndex, optionIndex int) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{
			quizAnswer,
			sessionID,
			strconv.Itoa(questionIndex),
			strconv.Itoa(optionIndex),
		},
	}.encode()
}

// buildQuizNavCallback builds next/prev/submit callback data.
func buildQuizNavCallback(subAction, sessionID string) string {
	return callbackData{Action: actionQuiz, Params: []string{subAction, sessionID}}.encode()
}

func buildQuizAutoCallback(sessionID string, on bool) string {
	return callbackData{Action: actionQuiz, Params: []string{quizAuto, sessionID, onOff(on)}}.encode()
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}

func buildResultCallback() string {
	return actionResult
}
