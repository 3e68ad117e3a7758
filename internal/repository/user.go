package repository

import (
	"context"
	"fmt"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/infra/postgres"
)

type UserRepository struct {
	db postgres.DBTX
}

func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert registers the user or refreshes chat, name and last visit of a known one.
// CreatedAt and LastSeenAt are filled from the row. It reports whether the row is new.
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) (bool, error) {
	query := `
    INSERT INTO users (id, chat_id, first_name)
    VALUES ($1, $2, $3)
    ON CONFLICT (id) DO UPDATE
        SET chat_id      = EXCLUDED.chat_id,
            first_name   = EXCLUDED.first_name,
            last_seen_at = NOW()
    RETURNING created_at, last_seen_at, (xmax = 0) AS inserted
    `

	var inserted bool
	err := r.db.QueryRow(ctx, query, user.ID, user.ChatID, user.FirstName).
		Scan(&user.CreatedAt, &user.LastSeenAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}

	return inserted, nil
}
