package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(t *testing.T) *models.SurveyPayload {
	t.Helper()
	def := models.NewSurveyDefinition(models.SurveyMeta{ID: "survey-1", Name: "NPS"}, []models.Question{
		{ID: "q1", Type: models.Singleline, Prompt: "Why?", Singleline: &models.SinglelineContent{}},
	})
	answers := models.NewAnswerSet(def.ID())
	answers.SetAnswer(0, "because")
	payload, err := models.NewSurveyPayload(def, answers)
	require.NoError(t, err)
	return payload
}

func TestNewSurveySubmittedEvent(t *testing.T) {
	payload := testPayload(t)

	event, err := NewSurveySubmittedEvent(payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventSurveySubmitted, event.Type)
	assert.Equal(t, "survey-engine", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.False(t, event.Timestamp.IsZero())

	data, ok := event.Data.(SurveySubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, payload.ID, data.PayloadID)
	assert.Equal(t, []models.QuestionResponse{{QuestionID: "q1", Index: 0, Values: []string{"because"}}}, data.Responses)
}

func TestWatermillEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "survey-payloads")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "survey-payloads", logger)
	event, err := NewSurveySubmittedEvent(testPayload(t))
	require.NoError(t, err)

	require.NoError(t, publisher.PublishSurveyEvent(ctx, event))

	select {
	case msg := <-messages:
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventSurveySubmitted), msg.Metadata.Get("event_type"))
		assert.Equal(t, "survey-engine", msg.Metadata.Get("source"))

		var decoded SurveyEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, event.ID, decoded.ID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("timed out waiting for published message")
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := NewMockEventPublisher(logger)
	event, err := NewSurveySubmittedEvent(testPayload(t))
	require.NoError(t, err)

	require.NoError(t, mock.PublishSurveyEvent(context.Background(), event))
	assert.Len(t, mock.GetPublishedEvents(), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())

	mock.Err = errors.New("broker down")
	assert.Error(t, mock.PublishSurveyEvent(context.Background(), event))
	assert.Empty(t, mock.GetPublishedEvents())
}
