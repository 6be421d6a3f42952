package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/repositories"
	"github.com/SAP-F-2025/survey-engine/internal/services"
	"github.com/SAP-F-2025/survey-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PayloadHandler exposes the delivery outbox for inspection.
type PayloadHandler struct {
	BaseHandler
	exportService services.ExportService
	repo          repositories.PayloadRepository
}

func NewPayloadHandler(exportService services.ExportService, repo repositories.PayloadRepository, logger utils.Logger) *PayloadHandler {
	return &PayloadHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
		repo:          repo,
	}
}

// ExportPayloads downloads queued payloads as an Excel workbook
// @Summary Export payloads
// @Tags payloads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "pending, delivered or failed"
// @Param survey_id query string false "Survey ID"
// @Param date_from query string false "RFC3339 lower bound on created_at"
// @Param date_to query string false "RFC3339 upper bound on created_at"
// @Param limit query int false "Maximum rows, all when omitted"
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Router /payloads/export [get]
func (h *PayloadHandler) ExportPayloads(c *gin.Context) {
	filters := parsePayloadFilters(c)
	h.LogRequest(c, "Exporting payloads", "limit", filters.Limit)

	data, err := h.exportService.ExportPayloadsToExcel(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to export payloads", err)
		return
	}

	filename := fmt.Sprintf("survey-payloads-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetPayloadStats counts payloads per delivery status
// @Summary Payload stats
// @Tags payloads
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /payloads/stats [get]
func (h *PayloadHandler) GetPayloadStats(c *gin.Context) {
	counts, err := h.repo.CountByStatus(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to count payloads", err)
		return
	}

	stats := make(map[string]int64, 3)
	for _, status := range []models.PayloadStatus{models.PayloadPending, models.PayloadDelivered, models.PayloadFailed} {
		stats[string(status)] = counts[status]
	}
	c.JSON(http.StatusOK, stats)
}

func parsePayloadFilters(c *gin.Context) repositories.PayloadFilters {
	filters := repositories.PayloadFilters{
		Limit:     parseIntQuery(c, "limit", 0),
		Offset:    parseIntQuery(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		DateFrom:  parseTimeQuery(c, "date_from"),
		DateTo:    parseTimeQuery(c, "date_to"),
	}

	if status := c.Query("status"); status != "" {
		payloadStatus := models.PayloadStatus(status)
		filters.Status = &payloadStatus
	}
	if surveyID := c.Query("survey_id"); surveyID != "" {
		filters.SurveyID = &surveyID
	}
	return filters
}
