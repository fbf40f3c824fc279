package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"mindful-chat/internal/domain/ports/repository"
	"mindful-chat/internal/infra/metrics"
	"mindful-chat/internal/usecase"
)

// RetentionWorker periodically deletes chats idle past the retention window
// and prunes the in-memory sessions that went stale with them.
type RetentionWorker struct {
	interval time.Duration
	maxIdle  time.Duration
	convs    repository.ConversationRepository
	sessions *usecase.SessionManager
	log      *zerolog.Logger
}

func NewRetentionWorker(interval, maxIdle time.Duration, convs repository.ConversationRepository, sessions *usecase.SessionManager, logger *zerolog.Logger) *RetentionWorker {
	l := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval: interval,
		maxIdle:  maxIdle,
		convs:    convs,
		sessions: sessions,
		log:      &l,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("max_idle", w.maxIdle).Msg("Starting retention worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.maxIdle)
	n, err := w.convs.DeleteIdleChats(ctx, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("retention sweep error")
		metrics.IncStoreError("delete_idle_chats")
		return
	}
	if n > 0 {
		metrics.AddRetentionDeleted(n)
		w.log.Info().Int64("count", n).Msg("idle chats deleted")
	}
	if pruned := w.sessions.PruneIdle(w.maxIdle); pruned > 0 {
		w.log.Info().Int("count", pruned).Msg("idle sessions pruned")
	}
}
