package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyJSON = `{
  "surveys": [{
    "id": "4f1c",
    "name": "Happiness Survey",
    "description": "Tell us how we are doing",
    "required": false,
    "show_success_message": true,
    "success_message": "Thanks for your feedback!",
    "questions": [
      {"id": "q1", "type": "singleline", "value": "What is your name?", "required": true},
      {"id": "q2", "type": "multichoice", "value": "Do you like it?",
       "answer_choices": [{"id": "c1", "value": "Yes"}, {"id": "c2", "value": "No"}]},
      {"id": "q3", "type": "multiselect", "value": "Which features?", "max_selections": 2,
       "answer_choices": [{"id": "f1", "value": "Chat"}, {"id": "f2", "value": "Surveys"}, {"id": "f3", "value": "Ratings"}]},
      {"id": "q4", "type": "multiselect", "value": "Anything else?",
       "answer_choices": [{"id": "g1", "value": "A"}, {"id": "g2", "value": "B"}]}
    ]
  }]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeSurveyDefinition(t *testing.T) {
	v := validator.New()

	t.Run("valid survey", func(t *testing.T) {
		def, err := DecodeSurveyDefinition([]byte(surveyJSON), v)
		require.NoError(t, err)
		require.NotNil(t, def)

		assert.Equal(t, "4f1c", def.ID())
		assert.Equal(t, "Happiness Survey", def.Name())
		assert.False(t, def.IsRequired())
		assert.Equal(t, 4, def.Len())

		msg, ok := def.SuccessText()
		assert.True(t, ok)
		assert.Equal(t, "Thanks for your feedback!", msg)

		q1, _ := def.Question(0)
		assert.Equal(t, models.Singleline, q1.Type)
		assert.True(t, q1.Required)

		q3, _ := def.Question(2)
		assert.Equal(t, 2, q3.MaxSelections())
		assert.Equal(t, "Surveys", q3.Choices()[1].Label)

		q4, _ := def.Question(3)
		assert.Equal(t, 2, q4.MaxSelections(), "missing max selections means all choices")
	})

	t.Run("no surveys", func(t *testing.T) {
		def, err := DecodeSurveyDefinition([]byte(`{"surveys": []}`), v)
		assert.NoError(t, err)
		assert.Nil(t, def)
	})

	t.Run("malformed question fails whole survey", func(t *testing.T) {
		body := `{"surveys": [{"id": "s", "questions": [
			{"id": "q1", "type": "singleline", "value": "ok"},
			{"id": "q2", "type": "multichoice", "value": "no choices"}
		]}]}`
		def, err := DecodeSurveyDefinition([]byte(body), v)
		assert.Nil(t, def)
		assert.True(t, apperrors.IsMalformedQuestion(err))
	})

	t.Run("unknown question type", func(t *testing.T) {
		body := `{"surveys": [{"id": "s", "questions": [{"id": "q1", "type": "slider", "value": "?"}]}]}`
		_, err := DecodeSurveyDefinition([]byte(body), v)
		assert.True(t, apperrors.IsMalformedQuestion(err))
	})

	t.Run("missing survey id", func(t *testing.T) {
		_, err := DecodeSurveyDefinition([]byte(`{"surveys": [{"name": "x"}]}`), v)
		var verrs apperrors.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeSurveyDefinition([]byte(`{`), v)
		assert.Error(t, err)
	})
}

func TestHTTPSurveyClient_GetSurveyDefinition(t *testing.T) {
	newClient := func(url string) *HTTPSurveyClient {
		return NewHTTPSurveyClient(HTTPClientConfig{
			BaseURL: url + "/",
			APIKey:  "secret",
			Timeout: time.Second,
			Logger:  testLogger(),
		}, validator.New())
	}

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/surveys", r.URL.Path)
			assert.Equal(t, "OAuth secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(surveyJSON))
		}))
		defer server.Close()

		def, err := newClient(server.URL).GetSurveyDefinition(context.Background())
		require.NoError(t, err)
		require.NotNil(t, def)
		assert.Equal(t, "4f1c", def.ID())
	})

	t.Run("no content is absent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		def, err := newClient(server.URL).GetSurveyDefinition(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, def)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		def, err := newClient(server.URL).GetSurveyDefinition(context.Background())
		assert.Nil(t, def)
		assert.True(t, apperrors.IsFetchFailure(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"surveys": [{"id": "s", "questions": [{"type": "singleline", "value": "?"}]}]}`))
		}))
		defer server.Close()

		_, err := newClient(server.URL).GetSurveyDefinition(context.Background())
		assert.True(t, apperrors.IsFetchFailure(err))
		assert.True(t, apperrors.IsMalformedQuestion(err))
	})

	t.Run("transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := newClient(url).GetSurveyDefinition(context.Background())
		assert.True(t, apperrors.IsFetchFailure(err))
	})
}
