package repository

import (
	"context"
	"fmt"

	"github.com/ekabrahmaa/prakriti-bot/internal/infra/postgres"
)

type ResetRepository struct {
	db postgres.DBTX
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{
		db: db,
	}
}

// ResetUser removes everything the user produced with the quiz.
// Run it inside a transaction together with the settings reset.
func (r *ResetRepository) ResetUser(ctx context.Context, userID int64) error {
	if err := NewResultRepository(r.db).Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset results: %w", err)
	}

	return nil
}
