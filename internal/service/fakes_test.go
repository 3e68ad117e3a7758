package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
)

// testCatalog builds n questions with one option per dosha.
// Option IDs follow "<question>-<dosha>".
func testCatalog(n int) *entities.Catalog {
	c := &entities.Catalog{Version: "test"}
	for i := 0; i < n; i++ {
		qid := fmt.Sprintf("q%d", i+1)
		q := entities.Question{ID: qid, Category: "Body", Text: qid}
		for _, d := range entities.Doshas {
			q.Options = append(q.Options, entities.Option{
				ID:    qid + "-" + string(d),
				Text:  string(d),
				Dosha: d,
			})
		}
		c.Questions = append(c.Questions, q)
	}
	return c
}

func optionID(i int, d entities.Dosha) string {
	return fmt.Sprintf("q%d-%s", i+1, d)
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[int64]*entities.UserSettings
	err      error
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*entities.UserSettings)}
}

func (r *fakeSettingsRepo) Create(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[userID] = entities.NewUserSettings(userID)
	return nil
}

func (r *fakeSettingsRepo) GetByUserID(_ context.Context, userID int64) (*entities.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.settings[userID]
	if !ok {
		return nil, repository.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSettingsRepo) update(userID int64, fn func(s *entities.UserSettings)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[userID]
	if !ok {
		return repository.ErrSettingsNotFound
	}
	fn(s)
	return nil
}

func (r *fakeSettingsRepo) UpdateAutoAdvance(_ context.Context, userID int64, enabled bool) error {
	return r.update(userID, func(s *entities.UserSettings) { s.AutoAdvance = enabled })
}

func (r *fakeSettingsRepo) UpdateAutoAdvanceDelay(_ context.Context, userID int64, seconds int) error {
	return r.update(userID, func(s *entities.UserSettings) { s.AutoAdvanceDelay = seconds })
}

func (r *fakeSettingsRepo) UpdateReminders(_ context.Context, userID int64, enabled bool) error {
	return r.update(userID, func(s *entities.UserSettings) { s.RemindersEnabled = enabled })
}

type fakeResultRepo struct {
	results map[int64]*entities.Result
	err     error
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[int64]*entities.Result)}
}

func (r *fakeResultRepo) Upsert(_ context.Context, res *entities.Result) error {
	if r.err != nil {
		return r.err
	}
	r.results[res.UserID] = res
	return nil
}

func (r *fakeResultRepo) GetByUserID(_ context.Context, userID int64) (*entities.Result, error) {
	res, ok := r.results[userID]
	if !ok {
		return nil, repository.ErrResultNotFound
	}
	return res, nil
}

type fakeUserRepo struct {
	users map[int64]*entities.User
	err   error
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *entities.User) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, known := r.users[user.ID]
	r.users[user.ID] = user
	return !known, nil
}

// fakeTx records statements executed inside a transaction.
type fakeTx struct {
	pgx.Tx
	execs []string
	err   error
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.NewCommandTag("OK 1"), t.err
}

type fakeTransactor struct {
	tx        *fakeTx
	committed bool
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if err := fn(ctx, f.tx); err != nil {
		return err
	}
	f.committed = true
	return nil
}

type sentReminder struct {
	userID  int64
	chatID  int64
	payload entities.ReminderPayload
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentReminder
	err  error
}

func (n *fakeNotifier) SendReminder(userID, chatID int64, payload entities.ReminderPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentReminder{userID: userID, chatID: chatID, payload: payload})
	return nil
}

var errBoom = errors.New("boom")
