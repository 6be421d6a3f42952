package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/survey-engine/internal/repositories"
	"github.com/SAP-F-2025/survey-engine/internal/services"
	"github.com/SAP-F-2025/survey-engine/internal/utils"
	"github.com/SAP-F-2025/survey-engine/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	surveyHandler  *SurveyHandler
	payloadHandler *PayloadHandler
}

func NewHandlerManager(
	session *services.SurveySession,
	exportService services.ExportService,
	payloadRepo repositories.PayloadRepository,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:  NewSurveyHandler(session, v, logger),
		payloadHandler: NewPayloadHandler(exportService, payloadRepo, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "survey-engine",
		})
	})

	v1 := router.Group("/api/v1")
	{
		survey := v1.Group("/survey")
		{
			survey.POST("/fetch", hm.surveyHandler.FetchSurvey)
			survey.GET("/status", hm.surveyHandler.GetStatus)
			survey.GET("", hm.surveyHandler.GetSurvey)
			survey.DELETE("", hm.surveyHandler.ClearSurvey)
			survey.POST("/show", hm.surveyHandler.ShowSurvey)
			survey.GET("/answers", hm.surveyHandler.GetAnswers)
			survey.PUT("/answers/:index", hm.surveyHandler.SetAnswer)
			survey.GET("/complete", hm.surveyHandler.IsComplete)
			survey.POST("/submit", hm.surveyHandler.SubmitSurvey)
			survey.POST("/skip", hm.surveyHandler.SkipSurvey)
		}

		payloads := v1.Group("/payloads")
		{
			payloads.GET("/export", hm.payloadHandler.ExportPayloads)
			payloads.GET("/stats", hm.payloadHandler.GetPayloadStats)
		}
	}
}
