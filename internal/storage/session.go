// Package storage keeps in-progress quiz sessions between updates.
//
// Sessions are transient: they live until the quiz is submitted, abandoned or
// left idle longer than the configured TTL. Results are stored elsewhere.
package storage

import (
	"errors"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("quiz session not found")

func cloneSession(s *entities.QuizSession) *entities.QuizSession {
	c := *s
	c.Answers = s.Answers.Clone(len(s.Answers))
	if s.RemindedAt != nil {
		t := *s.RemindedAt
		c.RemindedAt = &t
	}
	return &c
}

func isOpen(s *entities.QuizSession) bool {
	return s.Status == entities.StatusInProgress || s.Status == entities.StatusSubmitting
}
