package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// Logger returns the underlying slog.Logger scoped to the service
func (l *ServiceLogger) Logger() *slog.Logger {
	return l.logger
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, surveyID string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		// Adjust log level based on error type
		if IsValidation(err) {
			level = slog.LevelWarn
			status = "validation_error"
		} else if IsConflict(err) {
			level = slog.LevelWarn
			status = "conflict"
		} else if IsNotFound(err) {
			level = slog.LevelInfo
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("survey_id", surveyID),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var answerErr *apperrors.InvalidAnswerError
		var questionErr *apperrors.MalformedQuestionError
		if errors.As(err, &answerErr) {
			attrs = append(attrs, slog.Int("question_index", answerErr.Index))
		} else if errors.As(err, &questionErr) {
			attrs = append(attrs, slog.Int("question_index", questionErr.Index), slog.String("field", questionErr.Field))
		}
	}

	message := fmt.Sprintf("%s operation %s", operation, status)
	l.logger.LogAttrs(ctx, level, message, attrs...)
}

// LogStateTransition records a session lifecycle transition
func (l *ServiceLogger) LogStateTransition(ctx context.Context, surveyID string, from, to SessionState) {
	if from == to {
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "Survey session state changed",
		slog.String("survey_id", surveyID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}
