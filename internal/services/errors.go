package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Session lifecycle errors
	ErrSurveyNotReady      = errors.New("no survey is ready to display")
	ErrSurveyNotInProgress = errors.New("survey is not being displayed")
	ErrSurveyIncomplete    = errors.New("required questions are not answered")
	ErrSurveyRequired      = errors.New("survey is required and cannot be skipped")
	ErrQuestionNotFound    = errors.New("question not found")

	// Export errors
	ErrExportFailed = errors.New("failed to export payloads")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared error types from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type MalformedQuestionError = apperrors.MalformedQuestionError
type InvalidAnswerError = apperrors.InvalidAnswerError

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSurveyNotReady)
}

// IsConflict checks if error represents a lifecycle state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSurveyNotInProgress) ||
		errors.Is(err, ErrSurveyIncomplete) ||
		errors.Is(err, ErrSurveyRequired)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if apperrors.IsInvalidAnswer(err) || apperrors.IsMalformedQuestion(err) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}
