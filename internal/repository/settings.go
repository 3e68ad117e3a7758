package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/infra/postgres"
)

var ErrSettingsNotFound = errors.New("settings not found")

type SettingsRepository struct {
	db postgres.DBTX
}

func NewSettingsRepository(db postgres.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Create creates default settings for a new user.
func (r *SettingsRepository) Create(ctx context.Context, userID int64) error {
	query := `
        INSERT INTO user_settings (user_id, auto_advance, auto_advance_delay, reminders_enabled, created_at, updated_at)
        VALUES ($1, FALSE, $2, TRUE, NOW(), NOW())
        ON CONFLICT (user_id) DO NOTHING
    `

	_, err := r.db.Exec(ctx, query, userID, entities.DefaultAutoAdvanceDelay)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}

	return nil
}

// UpsertDefaults creates default settings or restores them for an existing user.
func (r *SettingsRepository) UpsertDefaults(ctx context.Context, userID int64) error {
	query := `
        INSERT INTO user_settings (user_id, auto_advance, auto_advance_delay, reminders_enabled, created_at, updated_at)
        VALUES ($1, FALSE, $2, TRUE, NOW(), NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET auto_advance = EXCLUDED.auto_advance,
            auto_advance_delay = EXCLUDED.auto_advance_delay,
            reminders_enabled = EXCLUDED.reminders_enabled,
            updated_at = NOW()
    `

	_, err := r.db.Exec(ctx, query, userID, entities.DefaultAutoAdvanceDelay)
	if err != nil {
		return fmt.Errorf("upsert default settings: %w", err)
	}

	return nil
}

// GetByUserID retrieves settings by user ID.
// Returns ErrSettingsNotFound if settings don't exist.
func (r *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*entities.UserSettings, error) {
	query := `
        SELECT user_id, auto_advance, auto_advance_delay, reminders_enabled, created_at, updated_at
        FROM user_settings
        WHERE user_id = $1
    `

	var settings entities.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.AutoAdvance,
		&settings.AutoAdvanceDelay,
		&settings.RemindersEnabled,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get settings by user id: %w", err)
	}

	return &settings, nil
}

// UpdateAutoAdvance updates only the auto_advance field.
func (r *SettingsRepository) UpdateAutoAdvance(ctx context.Context, userID int64, enabled bool) error {
	query := `
        UPDATE user_settings
        SET auto_advance = $2, updated_at = NOW()
        WHERE user_id = $1
    `

	cmdTag, err := r.db.Exec(ctx, query, userID, enabled)
	if err != nil {
		return fmt.Errorf("update auto advance: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

// UpdateAutoAdvanceDelay updates only the auto_advance_delay field.
func (r *SettingsRepository) UpdateAutoAdvanceDelay(ctx context.Context, userID int64, seconds int) error {
	query := `
        UPDATE user_settings
        SET auto_advance_delay = $2, updated_at = NOW()
        WHERE user_id = $1
    `

	cmdTag, err := r.db.Exec(ctx, query, userID, seconds)
	if err != nil {
		return fmt.Errorf("update auto advance delay: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}

	return nil
}

// UpdateReminders updates only the reminders_enabled field.
func (r *SettingsRepository) UpdateReminders(ctx context.Context, userID int64, enabled bool) error {
	query := `
        UPDATE user_settings
        SET reminders_enabled = $2, updated_at = NOW()
        WHERE user_id = $1
    `

	cmdTag, err := r.db.Exec(ctx, query, userID, enabled)
	if err != nil {
		return fmt.Errorf("update reminders: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}

	return nil
}
