// Package metrics exposes prometheus collectors for the quiz flow.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	QuizzesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prakriti_quizzes_started_total",
			Help: "Total number of quiz sessions started",
		},
	)

	QuizzesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prakriti_quizzes_completed_total",
			Help: "Total number of quizzes finalized, by dominant dosha",
		},
		[]string{"dominant"},
	)

	QuizzesAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prakriti_quizzes_abandoned_total",
			Help: "Total number of open sessions abandoned by a new quiz or a reset",
		},
	)

	AnswersRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prakriti_answers_recorded_total",
			Help: "Total number of answers recorded",
		},
	)

	AnswersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prakriti_answers_rejected_total",
			Help: "Total number of rejected answers and submissions, by reason",
		},
		[]string{"reason"},
	)

	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prakriti_reminders_sent_total",
			Help: "Total number of unfinished quiz reminders sent",
		},
	)

	UpdateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "prakriti_update_duration_seconds",
			Help: "Duration of telegram update handling in seconds",
		},
		[]string{"kind"},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("metrics server stopped")

	return nil
}
