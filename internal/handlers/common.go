package handlers

import (
	"github.com/SAP-F-2025/survey-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{"remote_addr", c.ClientIP()}, additionalFields...)
	h.log(c).Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.log(c).LogError(err, message, additionalFields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.log(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= 500 {
		h.LogError(c, err, message, "status_code", statusCode)
	} else if err != nil {
		h.LogWarn(c, message, "status_code", statusCode, "error", err.Error())
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}
