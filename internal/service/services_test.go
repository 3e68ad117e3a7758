package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

func TestUserService_EnsureUser(t *testing.T) {
	repo := &fakeUserRepo{users: make(map[int64]*entities.User)}
	svc := NewUserService(repo)
	ctx := context.Background()

	isNew, err := svc.EnsureUser(ctx, 1, 10, "Asha")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = svc.EnsureUser(ctx, 1, 11, "Asha")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, int64(11), repo.users[1].ChatID, "chat is refreshed on every visit")

	repo.err = errBoom
	_, err = svc.EnsureUser(ctx, 2, 20, "")
	assert.ErrorIs(t, err, errBoom)
}

func TestSettingsService(t *testing.T) {
	repo := newFakeSettingsRepo()
	svc := NewSettingsService(repo)
	ctx := context.Background()

	s, err := svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, s.AutoAdvance)
	assert.Equal(t, entities.DefaultAutoAdvanceDelay, s.AutoAdvanceDelay)
	assert.True(t, s.RemindersEnabled)

	require.NoError(t, svc.SetAutoAdvance(ctx, 1, true))
	require.NoError(t, svc.SetAutoAdvanceDelay(ctx, 1, 10))
	assert.ErrorIs(t, svc.SetAutoAdvanceDelay(ctx, 1, 7), ErrInvalidAutoAdvanceDelay)

	enabled, err := svc.ToggleReminders(ctx, 1)
	require.NoError(t, err)
	assert.False(t, enabled)

	s, err = svc.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, s.AutoAdvance)
	assert.Equal(t, 10, s.AutoAdvanceDelay)
	assert.False(t, s.RemindersEnabled)
}

func TestResultService_Latest(t *testing.T) {
	repo := newFakeResultRepo()
	svc := NewResultService(repo)
	ctx := context.Background()

	_, err := svc.Latest(ctx, 1)
	assert.ErrorIs(t, err, ErrNoResult)

	repo.results[1] = &entities.Result{UserID: 1, Dominant: entities.Kapha}
	res, err := svc.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.Kapha, res.Dominant)
}

func TestResetService_ResetUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(time.Hour)
	tr := &fakeTransactor{tx: &fakeTx{}}
	svc := NewResetService(tr, store)

	require.NoError(t, store.Save(ctx, entities.NewQuizSession("s1", 1, 10, 4, "test")))

	require.NoError(t, svc.ResetUser(ctx, 1))
	assert.True(t, tr.committed)
	require.Len(t, tr.tx.execs, 2)
	assert.Contains(t, tr.tx.execs[0], "user_settings")
	assert.Contains(t, tr.tx.execs[1], "DELETE FROM dosha_results")

	_, err := store.GetActiveByUser(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	old, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusAbandoned, old.Status)

	// Nothing to drop the second time.
	require.NoError(t, svc.ResetUser(ctx, 1))
}

func TestResetService_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(time.Hour)
	tr := &fakeTransactor{tx: &fakeTx{err: errBoom}}
	svc := NewResetService(tr, store)

	require.NoError(t, store.Save(ctx, entities.NewQuizSession("s1", 1, 10, 4, "test")))

	err := svc.ResetUser(ctx, 1)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, tr.committed)

	_, err = store.GetActiveByUser(ctx, 1)
	assert.NoError(t, err, "session survives a failed reset")
}
