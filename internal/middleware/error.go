package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/logger"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// AbortWithError writes err as {"error": message} plus any extra fields and
// stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	apiErr := apierrors.As(err)

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}

	body := gin.H{"error": apiErr.Message}
	for k, v := range apiErr.Extra {
		body[k] = v
	}
	c.AbortWithStatusJSON(apiErr.Status, body)
}

// Recovery turns panics into a JSON 500 so nothing crashes the process
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Log.Error("Panic recovered",
					zap.Any("panic", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes in the API error shape
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found."})
	}
}
