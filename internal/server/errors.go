package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	erpdomain "github.com/merchlab/ordersync/internal/erp/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors attached to the gin context into
// a uniform JSON error body. The dashboard either gets a full error state
// or a fully populated view, never a partial render.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var upstreamErr *erpdomain.UpstreamError

	switch {
	case errors.Is(err, erpdomain.ErrMissingCredentials):
		return http.StatusInternalServerError, errorPayload{
			Type:    "configuration_error",
			Message: "upstream client credentials are not configured",
		}
	case errors.Is(err, erpdomain.ErrMissingRefreshToken),
		errors.Is(err, erpdomain.ErrRefreshRejected):
		return http.StatusBadGateway, errorPayload{
			Type:    "auth_error",
			Message: "upstream refresh token is missing or rejected, rotate the credential",
		}
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: upstreamErr.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
