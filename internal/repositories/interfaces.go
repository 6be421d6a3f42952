package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PayloadFilters struct {
	Status    *models.PayloadStatus `json:"status"`
	SurveyID  *string               `json:"survey_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "delivered_at", "attempts"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// PayloadRepository persists queued survey payloads until they are delivered
type PayloadRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, payload *models.SurveyPayload) error
	GetByID(ctx context.Context, id string) (*models.SurveyPayload, error)

	// Query operations
	List(ctx context.Context, filters PayloadFilters) ([]*models.SurveyPayload, int64, error)
	ListPending(ctx context.Context, limit int) ([]*models.SurveyPayload, error)
	CountByStatus(ctx context.Context) (map[models.PayloadStatus]int64, error)

	// Delivery bookkeeping
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error
	MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error
}
