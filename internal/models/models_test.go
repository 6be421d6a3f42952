package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition() *SurveyDefinition {
	return NewSurveyDefinition(SurveyMeta{
		ID:                 "survey-1",
		Name:               "Happiness",
		Required:           true,
		ShowSuccessMessage: true,
		SuccessMessage:     "Thanks!",
	}, []Question{
		{ID: "q1", Type: Singleline, Prompt: "Name?", Required: true, Singleline: &SinglelineContent{}},
		{ID: "q2", Type: Multichoice, Prompt: "Pick one", Multichoice: &ChoiceContent{Choices: []Choice{
			{ID: "a", Label: "A"}, {ID: "b", Label: "B"},
		}}},
		{ID: "q3", Type: Multiselect, Prompt: "Pick some", Multiselect: &MultiselectContent{
			ChoiceContent: ChoiceContent{Choices: []Choice{{ID: "x", Label: "X"}, {ID: "y", Label: "Y"}}},
			MaxSelections: 2,
		}},
	})
}

func TestSurveyDefinition(t *testing.T) {
	t.Run("assigns identity by position", func(t *testing.T) {
		def := testDefinition()
		for i, q := range def.Questions() {
			assert.Equal(t, i, q.Index)
		}
		q, ok := def.QuestionByID("q3")
		require.True(t, ok)
		assert.Equal(t, 2, q.Index)
		assert.Equal(t, 2, q.MaxSelections())
		assert.Equal(t, 1, def.RequiredCount())
	})

	t.Run("is not mutated through accessors", func(t *testing.T) {
		def := testDefinition()
		qs := def.Questions()
		qs[0].Prompt = "changed"
		qs[1].Multichoice.Choices[0].Label = "changed"

		q0, _ := def.Question(0)
		q1, _ := def.Question(1)
		assert.Equal(t, "Name?", q0.Prompt)
		assert.Equal(t, "A", q1.Multichoice.Choices[0].Label)
	})

	t.Run("is not mutated through constructor input", func(t *testing.T) {
		choices := []Choice{{ID: "a", Label: "A"}}
		def := NewSurveyDefinition(SurveyMeta{ID: "s"}, []Question{
			{ID: "q", Type: Multichoice, Prompt: "?", Multichoice: &ChoiceContent{Choices: choices}},
		})
		choices[0].Label = "changed"

		q, _ := def.Question(0)
		assert.Equal(t, "A", q.Choices()[0].Label)
	})

	t.Run("out of range lookup", func(t *testing.T) {
		def := testDefinition()
		_, ok := def.Question(3)
		assert.False(t, ok)
		_, ok = def.Question(-1)
		assert.False(t, ok)
	})

	t.Run("success text", func(t *testing.T) {
		msg, ok := testDefinition().SuccessText()
		assert.True(t, ok)
		assert.Equal(t, "Thanks!", msg)

		hidden := NewSurveyDefinition(SurveyMeta{ID: "s", SuccessMessage: "Thanks!"}, nil)
		_, ok = hidden.SuccessText()
		assert.False(t, ok)
	})
}

func TestAnswerSet(t *testing.T) {
	answers := NewAnswerSet("survey-1")
	assert.False(t, answers.IsAnswered(0))

	answers.SetAnswer(0, "")
	assert.False(t, answers.IsAnswered(0), "empty value does not count as answered")

	answers.SetAnswer(0, "", "hello")
	assert.True(t, answers.IsAnswered(0))

	answers.SetAnswer(0, "")
	assert.False(t, answers.IsAnswered(0), "set replaces prior values")

	values := []string{"x"}
	answers.SetAnswer(2, values...)
	values[0] = "changed"
	got, ok := answers.Values(2)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, got)
	assert.Equal(t, []int{0, 2}, answers.Indexes())

	snap := answers.Snapshot()
	answers.SetAnswer(2, "y")
	got, _ = snap.Values(2)
	assert.Equal(t, []string{"x"}, got)
}

func TestNewSurveyPayload(t *testing.T) {
	def := testDefinition()
	answers := NewAnswerSet(def.ID())
	answers.SetAnswer(2, "x", "y")
	answers.SetAnswer(0, "hello")

	payload, err := NewSurveyPayload(def, answers)
	require.NoError(t, err)
	assert.NotEmpty(t, payload.ID)
	assert.Equal(t, "survey-1", payload.SurveyID)
	assert.Equal(t, PayloadPending, payload.Status)

	answers.SetAnswer(0, "mutated")
	answers.SetAnswer(1, "a")

	responses, err := payload.DecodeResponses()
	require.NoError(t, err)
	assert.Equal(t, []QuestionResponse{
		{QuestionID: "q1", Index: 0, Values: []string{"hello"}},
		{QuestionID: "q3", Index: 2, Values: []string{"x", "y"}},
	}, responses)
}

func TestQuestionType(t *testing.T) {
	for _, qt := range QuestionTypes {
		assert.True(t, qt.IsValid(), qt)
	}
	assert.False(t, QuestionType("ranking").IsValid())
}

func TestNewSurveyPayload_ClearedAnswer(t *testing.T) {
	def := testDefinition()
	answers := NewAnswerSet(def.ID())
	answers.SetAnswer(1)

	payload, err := NewSurveyPayload(def, answers)
	require.NoError(t, err)
	assert.Contains(t, string(payload.Responses), `"values":[]`)

	responses, err := payload.DecodeResponses()
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Empty(t, responses[0].Values)
}

func TestSurveyPayload_Clone(t *testing.T) {
	def := testDefinition()
	answers := NewAnswerSet(def.ID())
	answers.SetAnswer(0, "hello")

	payload, err := NewSurveyPayload(def, answers)
	require.NoError(t, err)
	reason := "timeout"
	payload.LastError = &reason

	clone := payload.Clone()
	clone.Status = PayloadDelivered
	clone.Attempts = 3
	clone.Responses[2] = 'X'
	*clone.LastError = "changed"

	assert.Equal(t, PayloadPending, payload.Status)
	assert.Zero(t, payload.Attempts)
	assert.Equal(t, "timeout", *payload.LastError)
	responses, err := payload.DecodeResponses()
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, responses[0].Values)
	assert.Equal(t, payload.ID, clone.ID)
}
