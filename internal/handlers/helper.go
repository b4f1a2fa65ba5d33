package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/refdata-service/internal/utils"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// parseCSV splits a comma separated form value, dropping blanks
func parseCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// userIDFromContext returns the authenticated user id set by upstream middleware, if any
func userIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(utils.ContextKeyUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-User-ID")
}
