package events

import (
	"time"

	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of survey events
type EventType string

const (
	EventSurveySubmitted EventType = "survey.submitted"
)

const (
	eventSource  = "survey-engine"
	eventVersion = "1.0"
)

// SurveyEvent is the envelope for every event published by the delivery pipeline
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SurveySubmittedEvent struct {
	PayloadID  string                    `json:"payload_id"`
	SurveyID   string                    `json:"survey_id"`
	SurveyName string                    `json:"survey_name,omitempty"`
	Responses  []models.QuestionResponse `json:"responses"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// NewSurveySubmittedEvent wraps a queued payload for publishing.
func NewSurveySubmittedEvent(payload *models.SurveyPayload) (*SurveyEvent, error) {
	responses, err := payload.DecodeResponses()
	if err != nil {
		return nil, err
	}

	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSurveySubmitted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: SurveySubmittedEvent{
			PayloadID:  payload.ID,
			SurveyID:   payload.SurveyID,
			SurveyName: payload.SurveyName,
			Responses:  responses,
			CreatedAt:  payload.CreatedAt,
		},
		Metadata: map[string]interface{}{
			"attempt": payload.Attempts + 1,
		},
	}, nil
}

// GenerateEventID returns a new unique event id
func GenerateEventID() string {
	return uuid.NewString()
}
