package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/repositories"
)

// maxBuffered bounds the payloads held in memory while the repository is unavailable.
const maxBuffered = 1000

// ErrOutboxFull is returned when a payload can neither be stored nor buffered.
var ErrOutboxFull = errors.New("outbox buffer is full")

// OutboxQueue persists submitted payloads so they survive restarts until the
// Dispatcher delivers them. Payloads the repository rejects are kept in memory
// and written again by Flush.
type OutboxQueue struct {
	repo   repositories.PayloadRepository
	logger *slog.Logger

	mu       sync.Mutex
	buffered []*models.SurveyPayload
}

func NewOutboxQueue(repo repositories.PayloadRepository, logger *slog.Logger) *OutboxQueue {
	return &OutboxQueue{
		repo:   repo,
		logger: logger.With("component", "outbox_queue"),
	}
}

// Enqueue stores a copy of payload as pending. A failed insert is buffered and
// only reported when the buffer is full.
func (q *OutboxQueue) Enqueue(ctx context.Context, payload *models.SurveyPayload) error {
	if payload == nil {
		return errors.New("payload is nil")
	}
	row := payload.Clone()
	row.Status = models.PayloadPending

	err := q.repo.Create(ctx, row)
	if err == nil {
		q.logger.DebugContext(ctx, "Payload stored in outbox", "payload_id", row.ID, "survey_id", row.SurveyID)
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buffered) >= maxBuffered {
		return fmt.Errorf("failed to store payload %s: %w: %w", row.ID, ErrOutboxFull, err)
	}
	q.buffered = append(q.buffered, row)
	q.logger.WarnContext(ctx, "Payload buffered until the outbox is reachable",
		"payload_id", row.ID,
		"buffered", len(q.buffered),
		"error", err)
	return nil
}

// Buffered returns the number of payloads waiting to be written to the repository.
func (q *OutboxQueue) Buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffered)
}

// Flush writes buffered payloads to the repository, keeping the ones that still
// fail. A payload whose row already exists is dropped from the buffer.
func (q *OutboxQueue) Flush(ctx context.Context) (int, error) {
	q.mu.Lock()
	pending := q.buffered
	q.buffered = nil
	q.mu.Unlock()

	if len(pending) == 0 {
		return 0, nil
	}

	var (
		kept    []*models.SurveyPayload
		lastErr error
	)
	for _, row := range pending {
		if err := q.store(ctx, row); err != nil {
			kept = append(kept, row)
			lastErr = err
		}
	}

	if len(kept) > 0 {
		q.mu.Lock()
		q.buffered = append(kept, q.buffered...)
		q.mu.Unlock()
	}

	flushed := len(pending) - len(kept)
	if flushed > 0 {
		q.logger.InfoContext(ctx, "Buffered payloads stored in outbox", "stored", flushed, "remaining", len(kept))
	}
	if lastErr != nil {
		return flushed, fmt.Errorf("failed to flush %d buffered payloads: %w", len(kept), lastErr)
	}
	return flushed, nil
}

func (q *OutboxQueue) store(ctx context.Context, row *models.SurveyPayload) error {
	existing, err := q.repo.GetByID(ctx, row.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return q.repo.Create(ctx, row)
}
