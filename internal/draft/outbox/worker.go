package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Repository defines what the worker needs from the outbox storage.
type Repository interface {
	FetchUnsentOutbox(ctx context.Context, limit int) ([]Event, error)
	MarkOutboxSent(ctx context.Context, ids []uuid.UUID) error
}

// Config holds outbox worker settings.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// DefaultConfig returns default worker configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		BatchSize:    100,
	}
}

// Worker polls the outbox for unsent events and publishes them in
// creation order. Publish-then-mark gives at-least-once delivery; the
// stream's duplicate window absorbs the redelivery case.
type Worker struct {
	repo      Repository
	publisher EventPublisher
	config    Config

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates an outbox worker.
func NewWorker(repo Repository, publisher EventPublisher, cfg Config) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the polling loop.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("outbox worker started")
	return nil
}

// Stop halts the polling loop and waits for the in-flight batch.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.ProcessOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce drains up to one batch of unsent events.
func (w *Worker) ProcessOnce(ctx context.Context) {
	batch, err := w.repo.FetchUnsentOutbox(ctx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent outbox events")
		return
	}
	if len(batch) == 0 {
		return
	}

	sent := make([]uuid.UUID, 0, len(batch))
	for _, event := range batch {
		if err := w.publisher.Publish(ctx, event); err != nil {
			// Stop the batch at the first failure so per-draft ordering
			// is preserved on the stream.
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish outbox event")
			break
		}
		sent = append(sent, event.ID)
	}

	if len(sent) == 0 {
		return
	}
	if err := w.repo.MarkOutboxSent(ctx, sent); err != nil {
		log.Error().Err(err).Msg("failed to mark outbox events sent")
		return
	}

	log.Debug().Int("published", len(sent)).Msg("outbox batch processed")
}
