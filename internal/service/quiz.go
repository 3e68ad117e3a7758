package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/domain/scoring"
	"github.com/ekabrahmaa/prakriti-bot/internal/metrics"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
	"github.com/ekabrahmaa/prakriti-bot/internal/storage"
)

var (
	ErrSessionNotFound  = errors.New("quiz session not found")
	ErrSessionNotActive = errors.New("quiz session is not active")
	ErrNoMoreQuestions  = errors.New("no more questions")
	ErrCatalogChanged   = errors.New("questionnaire changed since the quiz started")
)

// QuizService drives a quiz session from the first answer to the stored result.
type QuizService struct {
	catalog      *entities.Catalog
	sessions     SessionStore
	results      ResultRepository
	settingsRepo SettingsRepository
	opts         scoring.Options
	logger       *zap.Logger
	now          func() time.Time
}

func NewQuizService(
	catalog *entities.Catalog,
	sessions SessionStore,
	results ResultRepository,
	settingsRepo SettingsRepository,
	opts scoring.Options,
	logger *zap.Logger,
) *QuizService {
	return &QuizService{
		catalog:      catalog,
		sessions:     sessions,
		results:      results,
		settingsRepo: settingsRepo,
		opts:         opts,
		logger:       logger,
		now:          time.Now,
	}
}

// Catalog returns the questionnaire the service scores against.
func (s *QuizService) Catalog() *entities.Catalog {
	return s.catalog
}

// Start begins a new quiz for the user. Any open session of the user is abandoned.
func (s *QuizService) Start(ctx context.Context, userID, chatID int64) (*entities.QuizSession, error) {
	if err := s.abandonActive(ctx, userID); err != nil {
		return nil, err
	}

	session := entities.NewQuizSession(uuid.NewString(), userID, chatID, s.catalog.Len(), s.catalog.Version)

	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrSettingsNotFound) {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if settings != nil {
		session.AutoAdvance = settings.AutoAdvance
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	metrics.QuizzesStarted.Inc()
	s.logger.Info("quiz started",
		zap.Int64("user_id", userID),
		zap.String("session_id", session.ID),
		zap.Bool("auto_advance", session.AutoAdvance),
	)

	return session, nil
}

// Resume returns the user's open session so an interrupted quiz can continue.
func (s *QuizService) Resume(ctx context.Context, userID int64) (*entities.QuizSession, error) {
	session, err := s.sessions.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}

	if session.CatalogVersion != s.catalog.Version {
		// Answers refer to option IDs of another questionnaire.
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("delete stale session: %w", err)
		}
		return nil, ErrCatalogChanged
	}

	// A crash between BeginSubmit and Complete leaves the session submitting.
	if session.Status == entities.StatusSubmitting {
		session.CancelSubmit()
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		s.logger.Info("interrupted submit reopened",
			zap.Int64("user_id", userID),
			zap.String("session_id", session.ID),
		)
	}

	return session, nil
}

// GetSession loads a session owned by the user.
func (s *QuizService) GetSession(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// RecordAnswer stores the selected option for a question, overwriting any previous answer.
// The session stays on the current question; navigation is a separate step.
func (s *QuizService) RecordAnswer(
	ctx context.Context,
	userID int64,
	sessionID string,
	questionIndex int,
	optionID string,
) (*entities.QuizSession, error) {
	session, err := s.activeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := scoring.RecordAnswer(s.catalog, session.Answers, questionIndex, optionID)
	if err != nil {
		metrics.AnswersRejected.WithLabelValues(rejectReason(err)).Inc()
		return nil, err
	}

	session.SetAnswers(answers, questionIndex)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	metrics.AnswersRecorded.Inc()
	s.logger.Debug("answer recorded",
		zap.String("session_id", session.ID),
		zap.Int("question_index", questionIndex),
		zap.String("option_id", optionID),
	)

	return session, nil
}

// Next moves the session to the following question.
func (s *QuizService) Next(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error) {
	session, err := s.activeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Next(s.catalog.Len()) {
		return session, ErrNoMoreQuestions
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Previous moves the session one question back. Answers are kept for re-editing.
func (s *QuizService) Previous(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error) {
	session, err := s.activeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Previous() {
		return session, nil
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SetAutoAdvance switches auto-advance for the running session.
func (s *QuizService) SetAutoAdvance(ctx context.Context, userID int64, sessionID string, on bool) (*entities.QuizSession, error) {
	session, err := s.activeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.AutoAdvance = on
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// SetMessageID remembers which message renders the session.
func (s *QuizService) SetMessageID(ctx context.Context, session *entities.QuizSession, messageID int) error {
	session.MessageID = messageID
	return s.save(ctx, session)
}

// Trend returns the running tally of the session for the in-quiz indicator.
func (s *QuizService) Trend(session *entities.QuizSession) (entities.Tally, error) {
	tally, _, err := scoring.Tally(s.catalog, session.Answers)
	return tally, err
}

// Submit finalizes the session and stores the result, replacing the previous one.
//
// InProgress -> Submitting -> Completed. When the answers cannot be scored the
// session goes back to InProgress so the user can keep answering.
func (s *QuizService) Submit(ctx context.Context, userID int64, sessionID string) (*entities.Result, error) {
	session, err := s.activeSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.BeginSubmit()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	res, err := scoring.Finalize(s.catalog, session.Answers, s.opts)
	if err != nil {
		metrics.AnswersRejected.WithLabelValues(rejectReason(err)).Inc()
		s.reopen(ctx, session)
		return nil, err
	}

	res.UserID = userID
	res.SessionID = session.ID
	res.CompletedAt = s.now()

	if err := s.results.Upsert(ctx, res); err != nil {
		s.reopen(ctx, session)
		return nil, fmt.Errorf("store result: %w", err)
	}

	session.Complete()
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		s.logger.Warn("failed to drop completed session",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}

	metrics.QuizzesCompleted.WithLabelValues(string(res.Dominant)).Inc()
	s.logger.Info("quiz completed",
		zap.Int64("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("dominant", string(res.Dominant)),
		zap.Int("answered", res.Answered),
		zap.Bool("dual", res.Dual),
		zap.Bool("tridoshic", res.Tridoshic),
	)

	return res, nil
}

// reopen returns a session that failed to submit to InProgress. When the save
// fails the store keeps it submitting and Resume reopens it.
func (s *QuizService) reopen(ctx context.Context, session *entities.QuizSession) {
	session.CancelSubmit()
	if err := s.save(ctx, session); err != nil {
		s.logger.Error("failed to reopen session after failed submit",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

func (s *QuizService) abandonActive(ctx context.Context, userID int64) error {
	prev, err := s.sessions.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("get active session: %w", err)
	}

	// Abandoned sessions stay readable until they expire, so late button
	// presses get "not active" instead of "not found".
	prev.Abandon()
	if err := s.sessions.Save(ctx, prev); err != nil {
		return fmt.Errorf("abandon session: %w", err)
	}
	metrics.QuizzesAbandoned.Inc()

	s.logger.Info("quiz abandoned",
		zap.Int64("user_id", userID),
		zap.String("session_id", prev.ID),
		zap.Int("answered", prev.Answers.Answered()),
	)

	return nil
}

func (s *QuizService) activeSession(ctx context.Context, userID int64, sessionID string) (*entities.QuizSession, error) {
	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

func (s *QuizService) save(ctx context.Context, session *entities.QuizSession) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, scoring.ErrInvalidAnswerIndex):
		return "invalid_index"
	case errors.Is(err, scoring.ErrInvalidAnswerOption):
		return "invalid_option"
	case errors.Is(err, scoring.ErrEmptyQuiz):
		return "empty_quiz"
	default:
		return "other"
	}
}
