package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/conversation-api/internal/domain/conversation"
	"jan-server/services/conversation-api/internal/infrastructure/metrics"
	"jan-server/services/conversation-api/internal/infrastructure/queue"
)

// Worker derives titles for pending conversations claimed from the queue.
type Worker struct {
	id           int
	queue        queue.TitleQueue
	service      *conversation.ConversationService
	pollInterval time.Duration
	taskTimeout  time.Duration
	log          zerolog.Logger
	stopChan     chan struct{}
}

// NewWorker creates a new title worker.
func NewWorker(
	id int,
	queue queue.TitleQueue,
	service *conversation.ConversationService,
	pollInterval time.Duration,
	taskTimeout time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:           id,
		queue:        queue,
		service:      service,
		pollInterval: pollInterval,
		taskTimeout:  taskTimeout,
		log:          log.With().Int("worker_id", id).Str("component", "title-worker").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling the queue for pending conversations.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("title worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("title worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("title worker stopped")
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNext(ctx context.Context) {
	conv, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue conversation")
		return
	}

	if conv == nil {
		return
	}

	w.log.Info().
		Str("conversation_id", conv.PublicID).
		Msg("deriving conversation title")

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	start := time.Now()

	// Derivation is best effort: failures are recorded on the
	// conversation and retried on the next qualifying append.
	if err := w.service.DeriveTitle(taskCtx, conv); err != nil {
		metrics.RecordTitleJob("failed", time.Since(start).Seconds())
		w.log.Warn().
			Err(err).
			Str("conversation_id", conv.PublicID).
			Msg("title derivation failed")
		return
	}

	metrics.RecordTitleJob("completed", time.Since(start).Seconds())
}
