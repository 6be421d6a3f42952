package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName = "Payloads"
	exportPageSize  = 500
	exportTimeFmt   = "2006-01-02 15:04:05"
)

// ExportService renders queued survey payloads for offline inspection
type ExportService interface {
	ExportPayloadsToExcel(ctx context.Context, filters repositories.PayloadFilters) ([]byte, error)
}

type exportService struct {
	repo   repositories.PayloadRepository
	logger *slog.Logger
}

func NewExportService(repo repositories.PayloadRepository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger.With("component", "export_service"),
	}
}

var exportHeaders = []string{
	"Payload ID", "Survey ID", "Survey Name", "Status", "Attempts", "Created At", "Delivered At", "Last Error",
}

// ExportPayloadsToExcel writes one row per payload followed by one column per
// response, formatted as question_id=value|value.
func (s *exportService) ExportPayloadsToExcel(ctx context.Context, filters repositories.PayloadFilters) ([]byte, error) {
	payloads, err := s.collect(ctx, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Excel sheet: %v", ErrExportFailed, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	for col, header := range exportHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}

	for i, payload := range payloads {
		rowNum := i + 2
		row, err := payloadRow(payload)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping undecodable payload responses", "payload_id", payload.ID, "error", err)
		}
		for col, value := range row {
			if err := setCell(f, col+1, rowNum, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to write Excel file: %v", ErrExportFailed, err)
	}

	s.logger.InfoContext(ctx, "Exported survey payloads", "count", len(payloads))
	return buf.Bytes(), nil
}

// collect pages through the repository unless the caller asked for a single page.
func (s *exportService) collect(ctx context.Context, filters repositories.PayloadFilters) ([]*models.SurveyPayload, error) {
	if filters.Limit > 0 {
		payloads, _, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		return payloads, nil
	}

	var all []*models.SurveyPayload
	filters.Limit = exportPageSize
	for {
		page, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		all = append(all, page...)
		if len(page) < filters.Limit || int64(len(all)) >= total {
			return all, nil
		}
		filters.Offset += len(page)
	}
}

func payloadRow(payload *models.SurveyPayload) ([]interface{}, error) {
	row := []interface{}{
		payload.ID,
		payload.SurveyID,
		payload.SurveyName,
		string(payload.Status),
		payload.Attempts,
		payload.CreatedAt.Format(exportTimeFmt),
	}

	if payload.DeliveredAt != nil {
		row = append(row, payload.DeliveredAt.Format(exportTimeFmt))
	} else {
		row = append(row, "")
	}

	if payload.LastError != nil {
		row = append(row, *payload.LastError)
	} else {
		row = append(row, "")
	}

	responses, err := payload.DecodeResponses()
	if err != nil {
		return row, err
	}
	for _, r := range responses {
		row = append(row, fmt.Sprintf("%s=%s", r.QuestionID, strings.Join(r.Values, "|")))
	}
	return row, nil
}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}
