package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pathfinder-backend/internal/shared/telemetry"
)

// StatusClientClosedRequest reports a request abandoned by the caller.
const StatusClientClosedRequest = 499

// ErrorBody is the error object every failing endpoint returns.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody under "error".
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// NewError builds the envelope without writing it.
func NewError(code, message string, details any) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}}
}

// Error logs the failure and aborts the request with the error envelope.
// Client errors log at warn, everything from 500 up at error.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"request_id": c.GetString("requestId"),
	}
	if c.Request != nil {
		fields["path"] = c.Request.URL.Path
		fields["method"] = c.Request.Method
	}
	if sessionID := c.Param("id"); sessionID != "" {
		fields["session_id"] = sessionID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, NewError(code, message, details))
}
