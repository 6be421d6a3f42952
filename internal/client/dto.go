package client

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
)

// surveysResponse is the body of GET /surveys.
type surveysResponse struct {
	Surveys []surveyDTO `json:"surveys" validate:"dive"`
}

type surveyDTO struct {
	ID                 string        `json:"id" validate:"required"`
	Name               string        `json:"name"`
	Description        string        `json:"description"`
	Required           bool          `json:"required"`
	MultipleResponses  bool          `json:"multiple_responses"`
	ShowSuccessMessage bool          `json:"show_success_message"`
	SuccessMessage     string        `json:"success_message"`
	Questions          []questionDTO `json:"questions"`
}

// questionDTO carries no validate tags; structural problems surface as
// MalformedQuestionError from the question validator.
type questionDTO struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Value         string      `json:"value"`
	Required      bool        `json:"required"`
	Multiline     bool        `json:"multiline"`
	Instructions  string      `json:"instructions"`
	AnswerChoices []choiceDTO `json:"answer_choices"`
	MaxSelections int         `json:"max_selections"`
}

type choiceDTO struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// DecodeSurveyDefinition parses a /surveys response body and returns the first
// survey. It returns nil, nil when the body carries no survey. Any malformed
// question fails the whole definition.
func DecodeSurveyDefinition(data []byte, v *validator.Validator) (*models.SurveyDefinition, error) {
	var resp surveysResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal survey response: %w", err)
	}
	if err := v.Validate(&resp); err != nil {
		return nil, err
	}
	if len(resp.Surveys) == 0 {
		return nil, nil
	}
	return resp.Surveys[0].toDefinition(v.Question())
}

func (s surveyDTO) toDefinition(qv *validator.QuestionValidator) (*models.SurveyDefinition, error) {
	questions := make([]models.Question, 0, len(s.Questions))
	for i, dto := range s.Questions {
		q, err := dto.toQuestion(i)
		if err != nil {
			return nil, err
		}
		if err := qv.ValidateQuestion(q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	return models.NewSurveyDefinition(models.SurveyMeta{
		ID:                 s.ID,
		Name:               s.Name,
		Description:        s.Description,
		Required:           s.Required,
		MultipleResponses:  s.MultipleResponses,
		ShowSuccessMessage: s.ShowSuccessMessage,
		SuccessMessage:     s.SuccessMessage,
	}, questions), nil
}

func (d questionDTO) toQuestion(index int) (models.Question, error) {
	q := models.Question{
		Index:    index,
		ID:       d.ID,
		Type:     models.QuestionType(d.Type),
		Prompt:   d.Value,
		Required: d.Required,
	}

	switch q.Type {
	case models.Singleline:
		q.Singleline = &models.SinglelineContent{Multiline: d.Multiline, Placeholder: d.Instructions}
	case models.Multichoice:
		q.Multichoice = &models.ChoiceContent{Choices: d.choices()}
	case models.Multiselect:
		choices := d.choices()
		limit := d.MaxSelections
		if limit == 0 {
			// zero on the wire means no limit
			limit = len(choices)
		}
		q.Multiselect = &models.MultiselectContent{
			ChoiceContent: models.ChoiceContent{Choices: choices},
			MaxSelections: limit,
		}
	case models.Stackrank:
		q.Stackrank = &models.StackrankContent{Choices: d.choices()}
	default:
		return q, apperrors.NewMalformedQuestionError(index, d.ID, "type", fmt.Sprintf("unsupported question type: %s", d.Type))
	}
	return q, nil
}

func (d questionDTO) choices() []models.Choice {
	if len(d.AnswerChoices) == 0 {
		return nil
	}
	out := make([]models.Choice, len(d.AnswerChoices))
	for i, c := range d.AnswerChoices {
		out[i] = models.Choice{ID: c.ID, Label: c.Value}
	}
	return out
}
