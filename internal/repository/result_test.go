package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

// fakeDB records Exec calls and answers QueryRow with a canned row.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error
	row      pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *int:
			*p = r.values[i].(int)
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *[]byte:
			*p = r.values[i].([]byte)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unsupported scan type")
		}
	}
	return nil
}

func TestResultRepository_Upsert(t *testing.T) {
	db := &fakeDB{}
	repo := NewResultRepository(db)

	res := &entities.Result{
		UserID:      7,
		SessionID:   "s1",
		Percentages: map[entities.Dosha]int{entities.Vata: 50, entities.Pitta: 50, entities.Kapha: 0},
		Counts:      entities.Tally{entities.Vata: 1, entities.Pitta: 1, entities.Kapha: 0},
		Answered:    2,
		Total:       20,
		Dominant:    entities.Vata,
		Dual:        true,
	}

	require.NoError(t, repo.Upsert(context.Background(), res))
	require.Len(t, db.execArgs, 1)

	args := db.execArgs[0]
	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, 50, args[3])
	assert.Equal(t, 50, args[4])
	assert.Equal(t, 0, args[5])
	assert.Equal(t, "vata", args[9])
	assert.Equal(t, true, args[10])
	assert.Contains(t, db.execSQL[0], "ON CONFLICT (user_id) DO UPDATE")
}

func TestResultRepository_GetByUserID(t *testing.T) {
	counts, _ := json.Marshal(entities.Tally{entities.Vata: 6, entities.Pitta: 7, entities.Kapha: 7})
	completed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	db := &fakeDB{row: fakeRow{values: []any{
		int64(7), "s1", "2024.1",
		30, 35, 35, counts,
		20, 20, "pitta", true, true, completed,
	}}}
	repo := NewResultRepository(db)

	res, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 35, res.Percentages[entities.Pitta])
	assert.Equal(t, 7, res.Counts[entities.Kapha])
	assert.Equal(t, entities.Pitta, res.Dominant)
	assert.True(t, res.Tridoshic)
	assert.Equal(t, completed, res.CompletedAt)
}

func TestResultRepository_NotFound(t *testing.T) {
	repo := NewResultRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})

	_, err := repo.GetByUserID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestSettingsRepository_UpdateNotFound(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewSettingsRepository(db)

	assert.ErrorIs(t, repo.UpdateAutoAdvance(context.Background(), 1, true), ErrSettingsNotFound)
	assert.ErrorIs(t, repo.UpdateAutoAdvanceDelay(context.Background(), 1, 5), ErrSettingsNotFound)
	assert.ErrorIs(t, repo.UpdateReminders(context.Background(), 1, false), ErrSettingsNotFound)

	db.execTag = pgconn.NewCommandTag("UPDATE 1")
	assert.NoError(t, repo.UpdateAutoAdvance(context.Background(), 1, true))
}

func TestResetRepository_ResetUser(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewResetRepository(db).ResetUser(context.Background(), 42))
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "DELETE FROM dosha_results")
	assert.Equal(t, []any{int64(42)}, db.execArgs[0])

	db = &fakeDB{execErr: errors.New("boom")}
	err := NewResetRepository(db).ResetUser(context.Background(), 42)
	assert.ErrorContains(t, err, "reset results: delete result: boom")
}
