package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

type quizFixture struct {
	svc      *QuizService
	store    *storage.MemoryStore
	results  *fakeResultRepo
	settings *fakeSettingsRepo
}

func newQuizFixture(n int) quizFixture {
	store := storage.NewMemoryStore(time.Hour)
	results := newFakeResultRepo()
	settings := newFakeSettingsRepo()
	svc := NewQuizService(testCatalog(n), store, results, settings, scoring.DefaultOptions(), zap.NewNop())
	return quizFixture{svc: svc, store: store, results: results, settings: settings}
}

func TestQuizService_Start(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()
	require.NoError(t, f.settings.Create(ctx, 1))
	require.NoError(t, f.settings.UpdateAutoAdvance(ctx, 1, true))

	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, entities.StatusInProgress, s.Status)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Len(t, s.Answers, 4)
	assert.Zero(t, s.Answers.Answered())
	assert.True(t, s.AutoAdvance)
	assert.Equal(t, "test", s.CatalogVersion)

	resumed, err := f.svc.Resume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, s.ID, resumed.ID)
}

func TestQuizService_StartAbandonsPrevious(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)
	second, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	old, err := f.svc.GetSession(ctx, 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusAbandoned, old.Status)
	_, err = f.svc.RecordAnswer(ctx, 1, first.ID, 0, optionID(0, entities.Vata))
	assert.ErrorIs(t, err, ErrSessionNotActive)

	resumed, err := f.svc.Resume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, resumed.ID)
}

func TestQuizService_ResumeNone(t *testing.T) {
	f := newQuizFixture(4)

	_, err := f.svc.Resume(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizService_ResumeStaleCatalog(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()

	old := entities.NewQuizSession("old", 1, 100, 4, "previous")
	require.NoError(t, f.store.Save(ctx, old))

	_, err := f.svc.Resume(ctx, 1)
	assert.ErrorIs(t, err, ErrCatalogChanged)

	_, err = f.store.Get(ctx, "old")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestQuizService_RecordAnswer(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	s, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Vata))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Answers.Answered())

	// Changing the answer overwrites the slot.
	s, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Kapha))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Answers.Answered())
	assert.Equal(t, optionID(0, entities.Kapha), s.Answers[0])

	stored, err := f.svc.GetSession(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, optionID(0, entities.Kapha), stored.Answers[0])
}

func TestQuizService_RecordAnswerErrors(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	tests := []struct {
		name    string
		userID  int64
		index   int
		option  string
		wantErr error
	}{
		{"negative index", 1, -1, optionID(0, entities.Vata), scoring.ErrInvalidAnswerIndex},
		{"index past end", 1, 4, optionID(0, entities.Vata), scoring.ErrInvalidAnswerIndex},
		{"option of another question", 1, 0, optionID(1, entities.Vata), scoring.ErrInvalidAnswerOption},
		{"unknown option", 1, 0, "nope", scoring.ErrInvalidAnswerOption},
		{"foreign session", 2, 0, optionID(0, entities.Vata), ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RecordAnswer(ctx, tt.userID, s.ID, tt.index, tt.option)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := f.svc.GetSession(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Answers.Answered())
}

func TestQuizService_Navigation(t *testing.T) {
	f := newQuizFixture(3)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	s, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Pitta))
	require.NoError(t, err)

	s, err = f.svc.Previous(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentIndex)

	s, err = f.svc.Next(ctx, 1, s.ID)
	require.NoError(t, err)
	s, err = f.svc.Next(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentIndex)

	s, err = f.svc.Next(ctx, 1, s.ID)
	assert.ErrorIs(t, err, ErrNoMoreQuestions)
	assert.Equal(t, 2, s.CurrentIndex)

	s, err = f.svc.Previous(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, optionID(0, entities.Pitta), s.Answers[0], "navigation keeps answers")
}

func TestQuizService_Trend(t *testing.T) {
	f := newQuizFixture(4)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	for i, d := range []entities.Dosha{entities.Kapha, entities.Kapha, entities.Vata} {
		s, err = f.svc.RecordAnswer(ctx, 1, s.ID, i, optionID(i, d))
		require.NoError(t, err)
	}

	tally, err := f.svc.Trend(s)
	require.NoError(t, err)
	assert.Equal(t, 2, tally[entities.Kapha])
	assert.Equal(t, 1, tally[entities.Vata])
	assert.Equal(t, 0, tally[entities.Pitta])
}

func TestQuizService_Submit(t *testing.T) {
	f := newQuizFixture(2)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Vata))
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 1, optionID(1, entities.Pitta))
	require.NoError(t, err)

	completedAt := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return completedAt }

	res, err := f.svc.Submit(ctx, 1, s.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.UserID)
	assert.Equal(t, completedAt, res.CompletedAt)
	assert.Equal(t, s.ID, res.SessionID)
	assert.Equal(t, 50, res.Percentages[entities.Vata])
	assert.Equal(t, 50, res.Percentages[entities.Pitta])
	assert.Equal(t, 0, res.Percentages[entities.Kapha])
	assert.Equal(t, entities.Vata, res.Dominant)
	assert.True(t, res.Dual)
	assert.False(t, res.Tridoshic)

	assert.Same(t, res, f.results.results[1])

	// The transient answer set is gone after completion.
	_, err = f.svc.GetSession(ctx, 1, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Resume(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.Submit(ctx, 1, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestQuizService_SubmitEmpty(t *testing.T) {
	f := newQuizFixture(3)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 1, s.ID)
	assert.ErrorIs(t, err, scoring.ErrEmptyQuiz)
	assert.Empty(t, f.results.results)

	stored, err := f.svc.GetSession(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusInProgress, stored.Status)

	// The session can still be answered and submitted.
	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 2, optionID(2, entities.Kapha))
	require.NoError(t, err)
	res, err := f.svc.Submit(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Percentages[entities.Kapha])
}

func TestQuizService_SubmitStoreFailure(t *testing.T) {
	f := newQuizFixture(1)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Vata))
	require.NoError(t, err)

	f.results.err = errBoom
	_, err = f.svc.Submit(ctx, 1, s.ID)
	assert.ErrorIs(t, err, errBoom)

	stored, err := f.svc.GetSession(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusInProgress, stored.Status)
	assert.Equal(t, 1, stored.Answers.Answered())
}

// failingSaves fails every save after the first ok ones.
type failingSaves struct {
	SessionStore
	ok int
}

func (s *failingSaves) Save(ctx context.Context, session *entities.QuizSession) error {
	if s.ok == 0 {
		return errBoom
	}
	s.ok--
	return s.SessionStore.Save(ctx, session)
}

func TestQuizService_ResumeReopensInterruptedSubmit(t *testing.T) {
	f := newQuizFixture(2)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)
	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, entities.Vata))
	require.NoError(t, err)

	// BeginSubmit is stored, the result write and the reopening save both fail.
	f.svc.sessions = &failingSaves{SessionStore: f.store, ok: 1}
	f.results.err = errBoom
	_, err = f.svc.Submit(ctx, 1, s.ID)
	require.ErrorIs(t, err, errBoom)

	stuck, err := f.store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusSubmitting, stuck.Status)

	f.svc.sessions = f.store
	f.results.err = nil

	resumed, err := f.svc.Resume(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusInProgress, resumed.Status)

	stored, err := f.store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusInProgress, stored.Status, "reopened status is persisted")

	_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 1, optionID(1, entities.Kapha))
	require.NoError(t, err)
	res, err := f.svc.Submit(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Answered)
}

func TestQuizService_SubmitReplacesResult(t *testing.T) {
	f := newQuizFixture(1)
	ctx := context.Background()

	for _, d := range []entities.Dosha{entities.Vata, entities.Kapha} {
		s, err := f.svc.Start(ctx, 1, 100)
		require.NoError(t, err)
		_, err = f.svc.RecordAnswer(ctx, 1, s.ID, 0, optionID(0, d))
		require.NoError(t, err)
		_, err = f.svc.Submit(ctx, 1, s.ID)
		require.NoError(t, err)
	}

	latest, err := NewResultService(f.results).Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.Kapha, latest.Dominant)
}

func TestQuizService_SetAutoAdvance(t *testing.T) {
	f := newQuizFixture(2)
	ctx := context.Background()
	s, err := f.svc.Start(ctx, 1, 100)
	require.NoError(t, err)
	assert.False(t, s.AutoAdvance)

	s, err = f.svc.SetAutoAdvance(ctx, 1, s.ID, true)
	require.NoError(t, err)
	assert.True(t, s.AutoAdvance)

	stored, err := f.svc.GetSession(ctx, 1, s.ID)
	require.NoError(t, err)
	assert.True(t, stored.AutoAdvance)
}
