package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ParseIndexParam reads a non-negative integer path parameter. It writes a
// 400 response and returns false when the parameter is invalid.
func ParseIndexParam(c *gin.Context, param string) (int, bool) {
	value := strings.TrimSpace(c.Param(param))
	index, err := strconv.Atoi(value)
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a non-negative integer",
		})
		return 0, false
	}
	return index, true
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseTimeQuery(c *gin.Context, param string) *time.Time {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return nil
	}
	return &value
}
