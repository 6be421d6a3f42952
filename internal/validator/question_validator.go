package validator

import (
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion checks the structural fields of a question and its variant payload.
func (v *QuestionValidator) ValidateQuestion(q models.Question) error {
	if q.ID == "" {
		return apperrors.NewMalformedQuestionError(q.Index, "", "id", "is required")
	}
	if q.Prompt == "" {
		return apperrors.NewMalformedQuestionError(q.Index, q.ID, "prompt", "is required")
	}

	switch q.Type {
	case models.Singleline:
		if q.Singleline == nil {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "singleline", "content is missing")
		}
		return nil
	case models.Multichoice:
		if q.Multichoice == nil {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "multichoice", "content is missing")
		}
		return v.validateChoices(q, q.Multichoice.Choices)
	case models.Multiselect:
		if q.Multiselect == nil {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "multiselect", "content is missing")
		}
		if err := v.validateChoices(q, q.Multiselect.Choices); err != nil {
			return err
		}
		if q.Multiselect.MaxSelections < 1 || q.Multiselect.MaxSelections > len(q.Multiselect.Choices) {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "max_selections",
				fmt.Sprintf("must be between 1 and %d", len(q.Multiselect.Choices)))
		}
		return nil
	case models.Stackrank:
		if q.Stackrank == nil {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "stackrank", "content is missing")
		}
		return nil
	default:
		return apperrors.NewMalformedQuestionError(q.Index, q.ID, "type", fmt.Sprintf("unsupported question type: %s", q.Type))
	}
}

// ValidateBatch validates every question of a definition, failing on the first error.
func (v *QuestionValidator) ValidateBatch(questions []models.Question) error {
	for _, q := range questions {
		if err := v.ValidateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

// IsAnswerValid reports whether values are an acceptable answer for q.
func (v *QuestionValidator) IsAnswerValid(q models.Question, values []string) bool {
	return v.ValidateAnswer(q, values) == nil
}

// ValidateAnswer applies the variant rules to a prospective answer. A single
// empty value always clears the answer, except for stackrank.
func (v *QuestionValidator) ValidateAnswer(q models.Question, values []string) error {
	switch q.Type {
	case models.Singleline:
		if len(values) > 1 {
			return apperrors.NewInvalidAnswerError(q.Index, values, "single line question accepts one value")
		}
		return nil
	case models.Multichoice:
		if isClear(values) {
			return nil
		}
		if len(values) != 1 {
			return apperrors.NewInvalidAnswerError(q.Index, values, "exactly one choice must be selected")
		}
		if !q.HasChoice(values[0]) {
			return apperrors.NewInvalidAnswerError(q.Index, values, fmt.Sprintf("unknown choice '%s'", values[0]))
		}
		return nil
	case models.Multiselect:
		if isClear(values) {
			return nil
		}
		seen := make(map[string]bool, len(values))
		for _, id := range values {
			if !q.HasChoice(id) {
				return apperrors.NewInvalidAnswerError(q.Index, values, fmt.Sprintf("unknown choice '%s'", id))
			}
			if seen[id] {
				return apperrors.NewInvalidAnswerError(q.Index, values, fmt.Sprintf("choice '%s' selected twice", id))
			}
			seen[id] = true
		}
		if limit := q.MaxSelections(); len(values) > limit {
			return apperrors.NewInvalidAnswerError(q.Index, values,
				fmt.Sprintf("at most %d selections allowed, got %d", limit, len(values)))
		}
		return nil
	case models.Stackrank:
		err := apperrors.NewInvalidAnswerError(q.Index, values, "stack rank questions are not supported")
		err.Err = apperrors.ErrNotImplemented
		return err
	default:
		return apperrors.NewInvalidAnswerError(q.Index, values, fmt.Sprintf("unsupported question type: %s", q.Type))
	}
}

func (v *QuestionValidator) validateChoices(q models.Question, choices []models.Choice) error {
	if len(choices) == 0 {
		return apperrors.NewMalformedQuestionError(q.Index, q.ID, "answer_choices", "must have at least 1 choice")
	}
	ids := make(map[string]bool, len(choices))
	for _, c := range choices {
		if c.ID == "" || c.Label == "" {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "answer_choices", "choices must have both id and label")
		}
		if ids[c.ID] {
			return apperrors.NewMalformedQuestionError(q.Index, q.ID, "answer_choices", fmt.Sprintf("duplicate choice id '%s'", c.ID))
		}
		ids[c.ID] = true
	}
	return nil
}

func isClear(values []string) bool {
	return len(values) == 0 || (len(values) == 1 && values[0] == "")
}
