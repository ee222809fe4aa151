package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"chatiip-backend/logger"
	"chatiip-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"page":    page,
		"limit":   limit,
		"total":   total,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service errors onto status codes. Unexpected
// errors are logged and answered with a generic message
func respondServiceError(c *gin.Context, log *logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrPayloadTooLarge):
		respondError(c, http.StatusBadRequest, "PAYLOAD_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusBadRequest, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token")
	default:
		log.Error(op+" failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// parseID reads a UUID path parameter, answering 400 when malformed
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt returns the integer query value or def when absent or malformed
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
