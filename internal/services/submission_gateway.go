package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/survey-engine/internal/models"
)

// PayloadQueue is the delivery queue a completed survey is handed to. The
// queue owns durability and retries; enqueue errors are not surfaced to callers.
// The queue takes ownership of the payload it is given.
type PayloadQueue interface {
	Enqueue(ctx context.Context, payload *models.SurveyPayload) error
}

// SubmissionGateway turns a completed answer set into a payload and hands it off.
type SubmissionGateway struct {
	queue  PayloadQueue
	logger *slog.Logger
}

func NewSubmissionGateway(queue PayloadQueue, logger *slog.Logger) *SubmissionGateway {
	return &SubmissionGateway{
		queue:  queue,
		logger: logger.With("component", "submission_gateway"),
	}
}

// Submit builds an immutable payload snapshot and enqueues it fire-and-forget.
// The enqueue outlives ctx so a caller going away can not drop the payload. The
// returned payload is a copy of the queued one.
func (g *SubmissionGateway) Submit(ctx context.Context, def *models.SurveyDefinition, answers *models.AnswerSet) (*models.SurveyPayload, error) {
	payload, err := models.NewSurveyPayload(def, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to build survey payload: %w", err)
	}

	result := payload.Clone()
	if err := g.queue.Enqueue(context.WithoutCancel(ctx), payload); err != nil {
		g.logger.ErrorContext(ctx, "Failed to enqueue survey payload",
			"payload_id", payload.ID,
			"survey_id", payload.SurveyID,
			"error", err)
		return result, nil
	}

	g.logger.InfoContext(ctx, "Enqueued survey payload",
		"payload_id", payload.ID,
		"survey_id", payload.SurveyID)
	return result, nil
}
