package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/cache"
	"github.com/SAP-F-2025/survey-engine/internal/events"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/repositories"
)

const claimKeyPrefix = "delivery:claim:"

type DispatcherConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
	ClaimTTL    time.Duration
	InstanceID  string
}

// DrainResult summarizes one pass over the outbox.
type DrainResult struct {
	Delivered int
	Failed    int
	Skipped   int
}

// Dispatcher publishes pending outbox payloads as survey.submitted events.
// Payloads are claimed in Redis first so concurrent instances do not publish
// the same payload twice.
type Dispatcher struct {
	queue     *OutboxQueue
	repo      repositories.PayloadRepository
	publisher events.EventPublisher
	claims    cache.CacheService
	config    DispatcherConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher drains the outbox owned by queue.
func NewDispatcher(
	queue *OutboxQueue,
	publisher events.EventPublisher,
	claims cache.CacheService,
	config DispatcherConfig,
	logger *slog.Logger,
) *Dispatcher {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.ClaimTTL <= 0 {
		config.ClaimTTL = 2 * config.Interval
	}
	return &Dispatcher{
		queue:     queue,
		repo:      queue.repo,
		publisher: publisher,
		claims:    claims,
		config:    config,
		logger:    logger.With("component", "dispatcher"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run drains the outbox on every tick until ctx ends.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	d.logger.InfoContext(ctx, "Dispatcher started",
		"interval", d.config.Interval,
		"batch_size", d.config.BatchSize,
		"max_attempts", d.config.MaxAttempts)

	for {
		if _, err := d.Drain(ctx); err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "Outbox drain failed", "error", err)
		}
		select {
		case <-ctx.Done():
			d.flushOnStop(ctx)
			d.logger.Info("Dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// flushOnStop gives buffered payloads one last chance to reach the repository.
func (d *Dispatcher) flushOnStop(ctx context.Context) {
	if d.queue.Buffered() == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := d.queue.Flush(flushCtx); err != nil {
		d.logger.Error("Buffered payloads lost on shutdown", "buffered", d.queue.Buffered(), "error", err)
	}
}

// Drain stores any buffered payloads, then makes a single pass over up to
// BatchSize pending payloads, oldest first.
func (d *Dispatcher) Drain(ctx context.Context) (DrainResult, error) {
	var result DrainResult

	if _, err := d.queue.Flush(ctx); err != nil {
		d.logger.WarnContext(ctx, "Buffered payloads not stored yet", "buffered", d.queue.Buffered(), "error", err)
	}

	pending, err := d.repo.ListPending(ctx, d.config.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending payloads: %w", err)
	}

	for _, payload := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		claimed, err := d.claims.SetIfAbsent(ctx, claimKeyPrefix+payload.ID, d.config.InstanceID, d.config.ClaimTTL)
		if err != nil {
			return result, fmt.Errorf("failed to claim payload %s: %w", payload.ID, err)
		}
		if !claimed {
			result.Skipped++
			continue
		}

		current, err := d.repo.GetByID(ctx, payload.ID)
		switch {
		case err != nil:
			d.logger.WarnContext(ctx, "Failed to reload claimed payload", "payload_id", payload.ID, "error", err)
			result.Skipped++
		case current == nil || current.Status != models.PayloadPending:
			// delivered by another instance after our listing
			result.Skipped++
		default:
			if err := d.deliver(ctx, current); err != nil {
				result.Failed++
			} else {
				result.Delivered++
			}
		}

		if err := d.claims.Delete(ctx, claimKeyPrefix+payload.ID); err != nil {
			d.logger.WarnContext(ctx, "Failed to release payload claim", "payload_id", payload.ID, "error", err)
		}
	}

	if len(pending) > 0 {
		d.logger.InfoContext(ctx, "Outbox drained",
			"delivered", result.Delivered,
			"failed", result.Failed,
			"skipped", result.Skipped)
	}
	return result, nil
}

func (d *Dispatcher) deliver(ctx context.Context, payload *models.SurveyPayload) error {
	event, err := events.NewSurveySubmittedEvent(payload)
	if err == nil {
		err = d.publisher.PublishSurveyEvent(ctx, event)
	}
	if err != nil {
		d.logger.WarnContext(ctx, "Failed to deliver payload",
			"payload_id", payload.ID,
			"attempt", payload.Attempts+1,
			"error", err)
		if markErr := d.repo.MarkFailed(ctx, payload.ID, err.Error(), d.config.MaxAttempts); markErr != nil {
			d.logger.ErrorContext(ctx, "Failed to record delivery failure", "payload_id", payload.ID, "error", markErr)
		}
		return err
	}

	if err := d.repo.MarkDelivered(ctx, payload.ID, d.now()); err != nil {
		// Published but not marked: the payload will be published again next pass.
		d.logger.ErrorContext(ctx, "Failed to mark payload delivered", "payload_id", payload.ID, "error", err)
		return err
	}
	return nil
}
