package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/infra/postgres"
)

var ErrResultNotFound = errors.New("result not found")

// ResultRepository stores the latest Prakriti result of every user.
type ResultRepository struct {
	db postgres.DBTX
}

func NewResultRepository(db postgres.DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert stores res as the user's current result, replacing the previous one.
func (r *ResultRepository) Upsert(ctx context.Context, res *entities.Result) error {
	counts, err := json.Marshal(res.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}

	query := `
		INSERT INTO dosha_results (
			user_id, session_id, catalog_version,
			vata_pct, pitta_pct, kapha_pct, counts,
			answered, total, dominant, is_dual, is_tridoshic, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    catalog_version = EXCLUDED.catalog_version,
		    vata_pct = EXCLUDED.vata_pct,
		    pitta_pct = EXCLUDED.pitta_pct,
		    kapha_pct = EXCLUDED.kapha_pct,
		    counts = EXCLUDED.counts,
		    answered = EXCLUDED.answered,
		    total = EXCLUDED.total,
		    dominant = EXCLUDED.dominant,
		    is_dual = EXCLUDED.is_dual,
		    is_tridoshic = EXCLUDED.is_tridoshic,
		    completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.Exec(
		ctx,
		query,
		res.UserID,
		res.SessionID,
		res.CatalogVersion,
		res.Percentages[entities.Vata],
		res.Percentages[entities.Pitta],
		res.Percentages[entities.Kapha],
		counts,
		res.Answered,
		res.Total,
		string(res.Dominant),
		res.Dual,
		res.Tridoshic,
		res.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}

	return nil
}

// GetByUserID returns the user's current result.
func (r *ResultRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Result, error) {
	query := `
		SELECT user_id, session_id, catalog_version,
		       vata_pct, pitta_pct, kapha_pct, counts,
		       answered, total, dominant, is_dual, is_tridoshic, completed_at
		FROM dosha_results
		WHERE user_id = $1
	`

	var (
		res                entities.Result
		vata, pitta, kapha int
		counts             []byte
		dominant           string
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&res.UserID,
		&res.SessionID,
		&res.CatalogVersion,
		&vata,
		&pitta,
		&kapha,
		&counts,
		&res.Answered,
		&res.Total,
		&dominant,
		&res.Dual,
		&res.Tridoshic,
		&res.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	res.Percentages = map[entities.Dosha]int{
		entities.Vata:  vata,
		entities.Pitta: pitta,
		entities.Kapha: kapha,
	}
	res.Dominant = entities.Dosha(dominant)

	res.Counts = entities.NewTally()
	if len(counts) > 0 {
		if err := json.Unmarshal(counts, &res.Counts); err != nil {
			return nil, fmt.Errorf("unmarshal counts: %w", err)
		}
	}

	return &res, nil
}

// Delete removes the user's result.
func (r *ResultRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM dosha_results WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}

	return nil
}
