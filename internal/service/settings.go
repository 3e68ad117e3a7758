package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
)

var ErrInvalidAutoAdvanceDelay = errors.New("invalid auto-advance delay")

type SettingsService struct {
	repository SettingsRepository
}

func NewSettingsService(repository SettingsRepository) *SettingsService {
	return &SettingsService{repository: repository}
}

func (s *SettingsService) GetOrCreate(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	settings, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			// Create default settings.
			if err := s.repository.Create(ctx, userID); err != nil {
				return nil, fmt.Errorf("create settings: %w", err)
			}
			return s.repository.GetByUserID(ctx, userID)
		}
		return nil, err
	}

	return settings, nil
}

func (s *SettingsService) SetAutoAdvance(ctx context.Context, userID int64, enabled bool) error {
	return s.repository.UpdateAutoAdvance(ctx, userID, enabled)
}

func (s *SettingsService) SetAutoAdvanceDelay(ctx context.Context, userID int64, seconds int) error {
	if !entities.IsValidAutoAdvanceDelay(seconds) {
		return ErrInvalidAutoAdvanceDelay
	}
	return s.repository.UpdateAutoAdvanceDelay(ctx, userID, seconds)
}

// ToggleReminders flips the reminders flag and returns the new value.
func (s *SettingsService) ToggleReminders(ctx context.Context, userID int64) (bool, error) {
	settings, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}

	enabled := !settings.RemindersEnabled
	if err := s.repository.UpdateReminders(ctx, userID, enabled); err != nil {
		return false, err
	}

	return enabled, nil
}
