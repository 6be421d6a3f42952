package handlers

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/SAP-F-2025/survey-engine/internal/errors"
	"github.com/SAP-F-2025/survey-engine/internal/models"
	"github.com/SAP-F-2025/survey-engine/internal/services"
	"github.com/SAP-F-2025/survey-engine/internal/utils"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

// SurveyHandler bridges the survey session to an out-of-process display shell.
type SurveyHandler struct {
	BaseHandler
	session   *services.SurveySession
	validator *validator.Validator
}

func NewSurveyHandler(session *services.SurveySession, v *validator.Validator, logger utils.Logger) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler: NewBaseHandler(logger),
		session:     session,
		validator:   v,
	}
}

type SetAnswerRequest struct {
	Values []string `json:"values" validate:"max=100,dive,max=4096"`
}

type AnswerResponse struct {
	Index    int      `json:"index"`
	Values   []string `json:"values"`
	Answered bool     `json:"answered"`
}

// FetchSurvey starts a survey fetch
// @Summary Fetch survey
// @Description Starts fetching the survey definition. With wait=true the response carries the outcome.
// @Tags survey
// @Produce json
// @Param wait query bool false "Wait for the fetch to complete"
// @Success 200 {object} map[string]bool
// @Success 202 {object} map[string]bool
// @Failure 409 {object} ErrorResponse
// @Router /survey/fetch [post]
func (h *SurveyHandler) FetchSurvey(c *gin.Context) {
	logger := h.log(c)
	fetch, accepted := h.session.FetchSurvey(c.Request.Context(), func(success bool) {
		logger.Info("Survey fetch finished", "success", success)
	})
	if !accepted {
		h.RespondWithError(c, http.StatusConflict, "Survey fetch already in progress", nil)
		return
	}

	wait, _ := strconv.ParseBool(c.Query("wait"))
	if !wait {
		c.JSON(http.StatusAccepted, gin.H{"accepted": true})
		return
	}

	success, err := fetch.Wait(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, http.StatusGatewayTimeout, "Survey fetch did not complete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": success, "ready": h.session.IsSurveyReady()})
}

// GetStatus reports the session state
// @Summary Survey session status
// @Tags survey
// @Produce json
// @Success 200 {object} services.SessionStatus
// @Router /survey/status [get]
func (h *SurveyHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Status())
}

// GetSurvey returns the current survey definition
// @Summary Get survey
// @Tags survey
// @Produce json
// @Success 200 {object} models.SurveyView
// @Failure 404 {object} ErrorResponse
// @Router /survey [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	def, ok := h.session.Definition()
	if !ok {
		h.handleServiceError(c, services.ErrSurveyNotReady)
		return
	}
	c.JSON(http.StatusOK, def.View())
}

// ShowSurvey starts displaying the survey with a fresh answer set
// @Summary Show survey
// @Tags survey
// @Produce json
// @Success 200 {object} models.SurveyView
// @Failure 404 {object} ErrorResponse
// @Router /survey/show [post]
func (h *SurveyHandler) ShowSurvey(c *gin.Context) {
	def, err := h.session.Show(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Showing survey", "survey_id", def.ID())
	c.JSON(http.StatusOK, def.View())
}

// SetAnswer replaces the answer of one question
// @Summary Set answer
// @Tags survey
// @Accept json
// @Produce json
// @Param index path int true "Question index"
// @Param answer body SetAnswerRequest true "Answer values"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /survey/answers/{index} [put]
func (h *SurveyHandler) SetAnswer(c *gin.Context) {
	index, ok := ParseIndexParam(c, "index")
	if !ok {
		return
	}

	var req SetAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	complete, err := h.session.SetAnswer(c.Request.Context(), index, req.Values...)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"complete": complete})
}

// GetAnswers lists the answers of the displayed survey
// @Summary Get answers
// @Tags survey
// @Produce json
// @Success 200 {array} AnswerResponse
// @Failure 409 {object} ErrorResponse
// @Router /survey/answers [get]
func (h *SurveyHandler) GetAnswers(c *gin.Context) {
	answers, ok := h.session.Answers()
	if !ok {
		h.handleServiceError(c, services.ErrSurveyNotInProgress)
		return
	}
	c.JSON(http.StatusOK, toAnswerResponses(answers))
}

// IsComplete reports whether all required questions are answered
// @Summary Survey completion
// @Tags survey
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /survey/complete [get]
func (h *SurveyHandler) IsComplete(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"complete": h.session.IsComplete()})
}

// SubmitSurvey hands the completed survey to the delivery queue
// @Summary Submit survey
// @Tags survey
// @Produce json
// @Success 200 {object} services.SubmitResult
// @Failure 409 {object} ErrorResponse
// @Router /survey/submit [post]
func (h *SurveyHandler) SubmitSurvey(c *gin.Context) {
	result, err := h.session.Submit(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Survey submitted", "payload_id", result.Payload.ID, "survey_id", result.Payload.SurveyID)
	c.JSON(http.StatusOK, result)
}

// SkipSurvey discards an optional survey without submitting it
// @Summary Skip survey
// @Tags survey
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /survey/skip [post]
func (h *SurveyHandler) SkipSurvey(c *gin.Context) {
	if err := h.session.Skip(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearSurvey discards the current survey and answers
// @Summary Clear survey
// @Tags survey
// @Success 204
// @Router /survey [delete]
func (h *SurveyHandler) ClearSurvey(c *gin.Context) {
	h.session.Cleanup()
	c.Status(http.StatusNoContent)
}

func toAnswerResponses(answers *models.AnswerSet) []AnswerResponse {
	indexes := answers.Indexes()
	out := make([]AnswerResponse, 0, len(indexes))
	for _, i := range indexes {
		values, _ := answers.Values(i)
		out = append(out, AnswerResponse{
			Index:    i,
			Values:   values,
			Answered: answers.IsAnswered(i),
		})
	}
	return out
}

func (h *SurveyHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	if errors.Is(err, apperrors.ErrNotImplemented) {
		h.RespondWithError(c, http.StatusNotImplemented, "Question type is not supported", err)
		return
	}

	var answerErr *services.InvalidAnswerError
	if errors.As(err, &answerErr) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Invalid answer", err, map[string]interface{}{
			"index":  answerErr.Index,
			"reason": answerErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSurveyNotReady):
		h.RespondWithError(c, http.StatusNotFound, "No survey is available", err)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
	case errors.Is(err, services.ErrSurveyNotInProgress):
		h.RespondWithError(c, http.StatusConflict, "Survey is not being displayed", err)
	case errors.Is(err, services.ErrSurveyIncomplete):
		h.RespondWithError(c, http.StatusConflict, "Required questions are not answered", err)
	case errors.Is(err, services.ErrSurveyRequired):
		h.RespondWithError(c, http.StatusConflict, "Survey is required and cannot be skipped", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
