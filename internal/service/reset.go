package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/metrics"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

type ResetService struct {
	tr       Transactor
	sessions SessionStore
}

func NewResetService(tr Transactor, sessions SessionStore) *ResetService {
	return &ResetService{
		tr:       tr,
		sessions: sessions,
	}
}

// ResetUser removes the stored result, restores default settings and abandons
// the open quiz session of the user.
func (s *ResetService) ResetUser(ctx context.Context, userID int64) error {
	err := s.tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		resetRepo := repository.NewResetRepository(tx)
		settingsRepo := repository.NewSettingsRepository(tx)

		if err := settingsRepo.UpsertDefaults(ctx, userID); err != nil {
			return err
		}

		if err := resetRepo.ResetUser(ctx, userID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("reset user: %w", err)
	}

	session, err := s.sessions.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("get active session: %w", err)
	}

	session.Abandon()
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	metrics.QuizzesAbandoned.Inc()

	return nil
}
