package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PayloadStatus string

const (
	PayloadPending   PayloadStatus = "pending"
	PayloadDelivered PayloadStatus = "delivered"
	PayloadFailed    PayloadStatus = "failed"
)

// QuestionResponse is one answered question inside a payload.
type QuestionResponse struct {
	QuestionID string   `json:"question_id"`
	Index      int      `json:"index"`
	Values     []string `json:"values"`
}

// SurveyPayload is the immutable submission snapshot handed to the delivery
// queue. It is also the outbox row the default queue persists.
type SurveyPayload struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	SurveyID    string         `json:"survey_id" gorm:"not null;size:64;index"`
	SurveyName  string         `json:"survey_name" gorm:"size:200"`
	Responses   datatypes.JSON `json:"responses" gorm:"type:jsonb"` // []QuestionResponse
	Status      PayloadStatus  `json:"status" gorm:"default:pending;index"`
	Attempts    int            `json:"attempts" gorm:"default:0"`
	LastError   *string        `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
}

func (SurveyPayload) TableName() string {
	return "survey_payloads"
}

// NewSurveyPayload builds a snapshot of the answers present at call time, in
// question order. Later changes to answers do not affect the payload.
func NewSurveyPayload(def *SurveyDefinition, answers *AnswerSet) (*SurveyPayload, error) {
	responses := make([]QuestionResponse, 0, answers.Len())
	for _, q := range def.questions {
		values, ok := answers.Values(q.Index)
		if !ok {
			continue
		}
		responses = append(responses, QuestionResponse{
			QuestionID: q.ID,
			Index:      q.Index,
			Values:     values,
		})
	}

	data, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal survey responses: %w", err)
	}

	return &SurveyPayload{
		ID:         uuid.NewString(),
		SurveyID:   def.ID(),
		SurveyName: def.Name(),
		Responses:  datatypes.JSON(data),
		Status:     PayloadPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// DecodeResponses returns the typed responses stored in the payload.
func (p *SurveyPayload) DecodeResponses() ([]QuestionResponse, error) {
	var responses []QuestionResponse
	if len(p.Responses) == 0 {
		return responses, nil
	}
	if err := json.Unmarshal(p.Responses, &responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal survey responses: %w", err)
	}
	return responses, nil
}

// Clone returns a deep copy so the caller and the queue never share a row.
func (p *SurveyPayload) Clone() *SurveyPayload {
	c := *p
	c.Responses = append(datatypes.JSON(nil), p.Responses...)
	if p.LastError != nil {
		lastErr := *p.LastError
		c.LastError = &lastErr
	}
	if p.DeliveredAt != nil {
		deliveredAt := *p.DeliveredAt
		c.DeliveredAt = &deliveredAt
	}
	return &c
}
