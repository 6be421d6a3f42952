package validator

import (
	"errors"
	"testing"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choices(ids ...string) []models.Choice {
	out := make([]models.Choice, len(ids))
	for i, id := range ids {
		out[i] = models.Choice{ID: id, Label: "label " + id}
	}
	return out
}

func multiselect(limit int, ids ...string) models.Question {
	return models.Question{
		Index: 2, ID: "q3", Type: models.Multiselect, Prompt: "Pick",
		Multiselect: &models.MultiselectContent{
			ChoiceContent: models.ChoiceContent{Choices: choices(ids...)},
			MaxSelections: limit,
		},
	}
}

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	valid := []models.Question{
		{ID: "q1", Type: models.Singleline, Prompt: "Name?", Singleline: &models.SinglelineContent{}},
		{ID: "q2", Type: models.Multichoice, Prompt: "One", Multichoice: &models.ChoiceContent{Choices: choices("a", "b")}},
		multiselect(2, "a", "b", "c"),
		{ID: "q4", Type: models.Stackrank, Prompt: "Rank", Stackrank: &models.StackrankContent{Choices: choices("a")}},
	}
	for _, q := range valid {
		assert.NoError(t, v.ValidateQuestion(q), q.Type)
	}
	assert.NoError(t, v.ValidateBatch(valid))

	tests := []struct {
		name  string
		q     models.Question
		field string
	}{
		{"missing id", models.Question{Type: models.Singleline, Prompt: "?", Singleline: &models.SinglelineContent{}}, "id"},
		{"missing prompt", models.Question{ID: "q", Type: models.Singleline, Singleline: &models.SinglelineContent{}}, "prompt"},
		{"missing content", models.Question{ID: "q", Type: models.Multichoice, Prompt: "?"}, "multichoice"},
		{"empty choices", models.Question{ID: "q", Type: models.Multichoice, Prompt: "?", Multichoice: &models.ChoiceContent{}}, "answer_choices"},
		{"duplicate choice", models.Question{ID: "q", Type: models.Multichoice, Prompt: "?", Multichoice: &models.ChoiceContent{Choices: choices("a", "a")}}, "answer_choices"},
		{"choice without label", models.Question{ID: "q", Type: models.Multichoice, Prompt: "?", Multichoice: &models.ChoiceContent{Choices: []models.Choice{{ID: "a"}}}}, "answer_choices"},
		{"max above choices", multiselect(4, "a", "b", "c"), "max_selections"},
		{"max zero", multiselect(0, "a"), "max_selections"},
		{"unknown type", models.Question{ID: "q", Type: "ranking", Prompt: "?"}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateQuestion(tt.q)
			var mqe *apperrors.MalformedQuestionError
			require.True(t, errors.As(err, &mqe), "expected MalformedQuestionError, got %v", err)
			assert.Equal(t, tt.field, mqe.Field)
		})
	}

	t.Run("batch fails on first malformed", func(t *testing.T) {
		batch := append(valid, models.Question{ID: "bad", Type: models.Singleline})
		assert.True(t, apperrors.IsMalformedQuestion(v.ValidateBatch(batch)))
	})
}

func TestQuestionValidator_ValidateAnswer(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("singleline", func(t *testing.T) {
		q := models.Question{Type: models.Singleline}
		assert.True(t, v.IsAnswerValid(q, []string{"hello"}))
		assert.True(t, v.IsAnswerValid(q, []string{""}))
		assert.False(t, v.IsAnswerValid(q, []string{"a", "b"}))
	})

	t.Run("multichoice", func(t *testing.T) {
		q := models.Question{Type: models.Multichoice, Multichoice: &models.ChoiceContent{Choices: choices("a", "b")}}
		assert.True(t, v.IsAnswerValid(q, []string{"a"}))
		assert.True(t, v.IsAnswerValid(q, []string{""}))
		assert.False(t, v.IsAnswerValid(q, []string{"a", "b"}))
		assert.False(t, v.IsAnswerValid(q, []string{"z"}))
	})

	t.Run("multiselect boundary", func(t *testing.T) {
		q := multiselect(2, "a", "b", "c")
		assert.True(t, v.IsAnswerValid(q, []string{"a", "b"}), "exactly max selections is valid")

		err := v.ValidateAnswer(q, []string{"a", "b", "c"})
		var iae *apperrors.InvalidAnswerError
		require.True(t, errors.As(err, &iae))
		assert.Equal(t, 2, iae.Index)
		assert.Equal(t, []string{"a", "b", "c"}, iae.Values)

		assert.False(t, v.IsAnswerValid(q, []string{"a", "a"}))
		assert.False(t, v.IsAnswerValid(q, []string{"z"}))
		assert.True(t, v.IsAnswerValid(q, []string{""}))
	})

	t.Run("stackrank not implemented", func(t *testing.T) {
		q := models.Question{Type: models.Stackrank, Stackrank: &models.StackrankContent{Choices: choices("a")}}
		err := v.ValidateAnswer(q, []string{"a"})
		assert.ErrorIs(t, err, apperrors.ErrNotImplemented)
	})
}

func TestIsComplete(t *testing.T) {
	def := models.NewSurveyDefinition(models.SurveyMeta{ID: "s"}, []models.Question{
		{ID: "q1", Type: models.Singleline, Prompt: "Name?", Required: true, Singleline: &models.SinglelineContent{}},
		{ID: "q2", Type: models.Multichoice, Prompt: "One", Multichoice: &models.ChoiceContent{Choices: choices("a", "b")}},
	})
	answers := models.NewAnswerSet("s")

	assert.False(t, IsComplete(def, answers))

	answers.SetAnswer(0, "hello")
	assert.True(t, IsComplete(def, answers))

	answers.SetAnswer(1, "a")
	assert.True(t, IsComplete(def, answers), "answering optional question keeps completeness")

	answers.SetAnswer(0, "")
	assert.False(t, IsComplete(def, answers), "clearing a required answer reverts completeness")

	t.Run("no required questions", func(t *testing.T) {
		optional := models.NewSurveyDefinition(models.SurveyMeta{ID: "o"}, []models.Question{
			{ID: "q1", Type: models.Singleline, Prompt: "?", Singleline: &models.SinglelineContent{}},
		})
		assert.True(t, IsComplete(optional, models.NewAnswerSet("o")))
		assert.True(t, IsComplete(models.NewSurveyDefinition(models.SurveyMeta{}, nil), nil))
	})

	t.Run("nil definition", func(t *testing.T) {
		assert.False(t, IsComplete(nil, answers))
	})
}

func TestValidator_ValidateStruct(t *testing.T) {
	type request struct {
		Type   string   `json:"type" validate:"required,question_type"`
		Values []string `json:"values" validate:"required"`
	}

	v := New()
	assert.NoError(t, v.Validate(&request{Type: "multiselect", Values: []string{"a"}}))

	err := v.Validate(&request{Type: "ranking"})
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Equal(t, "question_type", verrs[0].Rule)
}
