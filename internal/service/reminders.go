package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/metrics"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

const defaultReminderSchedule = "0 * * * *"

// ReminderService nudges users who left a quiz unfinished.
type ReminderService struct {
	sessions     SessionStore
	settingsRepo SettingsRepository
	catalog      *entities.Catalog
	notifier     ReminderNotifier
	schedule     string
	idleAfter    time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// NewReminderService creates a new reminder service.
func NewReminderService(
	sessions SessionStore,
	settingsRepo SettingsRepository,
	catalog *entities.Catalog,
	schedule string,
	idleAfter time.Duration,
	logger *zap.Logger,
) *ReminderService {
	if schedule == "" {
		schedule = defaultReminderSchedule
	}
	return &ReminderService{
		sessions:     sessions,
		settingsRepo: settingsRepo,
		catalog:      catalog,
		schedule:     schedule,
		idleAfter:    idleAfter,
		now:          time.Now,
		logger:       logger,
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *ReminderService) SetNotifier(notifier ReminderNotifier) {
	s.notifier = notifier
}

// Start runs the reminder job on its cron schedule until ctx is done.
func (s *ReminderService) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: processing quiz reminders")
		if err := s.Run(ctx); err != nil {
			s.logger.Error("failed to send quiz reminders", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	c.Start()
	s.logger.Info("reminder service started", zap.String("schedule", s.schedule))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("reminder service stopped")

	return nil
}

// Run purges expired sessions and sends one reminder per idle session.
func (s *ReminderService) Run(ctx context.Context) error {
	purged, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		s.logger.Warn("failed to purge expired sessions", zap.Error(err))
	} else if purged > 0 {
		s.logger.Info("expired sessions purged", zap.Int("count", purged))
	}

	sessions, err := s.sessions.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	now := s.now()
	due := make([]*entities.QuizSession, 0, len(sessions))
	for _, session := range sessions {
		if session.NeedsReminder(now, s.idleAfter) {
			due = append(due, session)
		}
	}

	sent := s.processBatch(ctx, due, now)

	s.logger.Info("reminders processed",
		zap.Int("active", len(sessions)),
		zap.Int("due", len(due)),
		zap.Int("total_sent", sent),
	)

	return nil
}

// processBatch processes due sessions concurrently.
func (s *ReminderService) processBatch(ctx context.Context, sessions []*entities.QuizSession, now time.Time) int {
	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for _, session := range sessions {
		wg.Add(1)
		sem <- struct{}{} // Acquire

		go func() {
			defer wg.Done()
			defer func() { <-sem }() // Release

			ok, err := s.processReminder(ctx, session, now)
			if err != nil {
				s.logger.Error("failed to process reminder",
					zap.Int64("user_id", session.UserID),
					zap.String("session_id", session.ID),
					zap.Error(err))
				return
			}
			if ok {
				mu.Lock()
				sent++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return sent
}

// processReminder handles a single idle session.
func (s *ReminderService) processReminder(ctx context.Context, session *entities.QuizSession, now time.Time) (bool, error) {
	enabled, err := s.remindersEnabled(ctx, session.UserID)
	if err != nil {
		return false, err
	}
	if !enabled {
		s.logger.Debug("reminders disabled", zap.Int64("user_id", session.UserID))
		return false, nil
	}

	if s.notifier == nil {
		return false, fmt.Errorf("notifier not initialized")
	}

	payload := entities.ReminderPayload{
		SessionID: session.ID,
		Answered:  session.Answers.Answered(),
		Total:     s.catalog.Len(),
		IdleFor:   now.Sub(session.UpdatedAt),
	}
	if tally, _, err := scoring.Tally(s.catalog, session.Answers); err == nil {
		if leading, ok := tally.Leading(); ok {
			payload.Leading = leading
		}
	}

	if err := s.notifier.SendReminder(session.UserID, session.ChatID, payload); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}

	metrics.RemindersSent.Inc()

	if err := s.markReminded(ctx, session, now); err != nil {
		return true, err
	}

	s.logger.Info("reminder sent successfully",
		zap.Int64("user_id", session.UserID),
		zap.String("session_id", session.ID),
		zap.Int("answered", payload.Answered),
	)

	return true, nil
}

// markReminded stamps RemindedAt on the stored session unless the user touched
// it after it was listed. RemindedAt does not change UpdatedAt, so the session
// is not nudged again until the user makes progress.
func (s *ReminderService) markReminded(ctx context.Context, listed *entities.QuizSession, now time.Time) error {
	session, err := s.sessions.Get(ctx, listed.ID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("reload session: %w", err)
	}

	if !session.IsActive() || !session.UpdatedAt.Equal(listed.UpdatedAt) {
		s.logger.Debug("session changed while reminding",
			zap.String("session_id", session.ID),
			zap.String("status", string(session.Status)),
		)
		return nil
	}

	remindedAt := now
	session.RemindedAt = &remindedAt
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}

	return nil
}

func (s *ReminderService) remindersEnabled(ctx context.Context, userID int64) (bool, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return entities.NewUserSettings(userID).RemindersEnabled, nil
		}
		return false, fmt.Errorf("get settings: %w", err)
	}
	return settings.RemindersEnabled, nil
}
