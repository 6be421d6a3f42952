package validator

import "github.com/SAP-F-2025/survey-engine/internal/models"

// IsComplete reports whether every required question of def is answered.
// A definition without required questions is always complete.
func IsComplete(def *models.SurveyDefinition, answers *models.AnswerSet) bool {
	if def == nil {
		return false
	}
	for _, q := range def.Questions() {
		if !q.Required {
			continue
		}
		if answers == nil || !answers.IsAnswered(q.Index) {
			return false
		}
	}
	return true
}
