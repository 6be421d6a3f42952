package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/repositories"
	"gorm.io/gorm"
)

type PayloadPostgreSQL struct {
	db *gorm.DB
}

func NewPayloadPostgreSQL(db *gorm.DB) repositories.PayloadRepository {
	return &PayloadPostgreSQL{
		db: db,
	}
}

// Migrate creates or updates the survey_payloads table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.SurveyPayload{})
}

func (p *PayloadPostgreSQL) Create(ctx context.Context, payload *models.SurveyPayload) error {
	return p.db.WithContext(ctx).Create(payload).Error
}

func (p *PayloadPostgreSQL) GetByID(ctx context.Context, id string) (*models.SurveyPayload, error) {
	var payload models.SurveyPayload
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&payload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payload, nil
}

func (p *PayloadPostgreSQL) List(ctx context.Context, filters repositories.PayloadFilters) ([]*models.SurveyPayload, int64, error) {
	var payloads []*models.SurveyPayload
	var total int64

	// apply filter first
	query := p.db.WithContext(ctx).Model(&models.SurveyPayload{})
	query = p.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = p.applyPaginationAndSort(query, filters)

	if err := query.Find(&payloads).Error; err != nil {
		return nil, 0, err
	}

	return payloads, total, nil
}

// ListPending returns the oldest pending payloads first
func (p *PayloadPostgreSQL) ListPending(ctx context.Context, limit int) ([]*models.SurveyPayload, error) {
	var payloads []*models.SurveyPayload
	query := p.db.WithContext(ctx).
		Where("status = ?", models.PayloadPending).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&payloads).Error; err != nil {
		return nil, err
	}
	return payloads, nil
}

func (p *PayloadPostgreSQL) CountByStatus(ctx context.Context) (map[models.PayloadStatus]int64, error) {
	var rows []struct {
		Status models.PayloadStatus
		Count  int64
	}
	if err := p.db.WithContext(ctx).
		Model(&models.SurveyPayload{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.PayloadStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (p *PayloadPostgreSQL) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	result := p.db.WithContext(ctx).
		Model(&models.SurveyPayload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.PayloadDelivered,
			"delivered_at": deliveredAt,
			"last_error":   nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payload %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// MarkFailed records a delivery failure. The payload stays pending until it
// has been attempted maxAttempts times.
func (p *PayloadPostgreSQL) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payload models.SurveyPayload
		if err := tx.Where("id = ?", id).First(&payload).Error; err != nil {
			return err
		}

		attempts := payload.Attempts + 1
		status := models.PayloadPending
		if maxAttempts > 0 && attempts >= maxAttempts {
			status = models.PayloadFailed
		}

		return tx.Model(&models.SurveyPayload{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"attempts":   attempts,
				"status":     status,
				"last_error": reason,
			}).Error
	})
}

func (p *PayloadPostgreSQL) applyFilters(query *gorm.DB, filters repositories.PayloadFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SurveyID != nil {
		query = query.Where("survey_id = ?", *filters.SurveyID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (p *PayloadPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.PayloadFilters) *gorm.DB {
	sortBy := "created_at"
	switch filters.SortBy {
	case "created_at", "delivered_at", "attempts":
		sortBy = filters.SortBy
	}

	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
