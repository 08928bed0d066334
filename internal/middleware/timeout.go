package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"bizdesk/internal/model"
)

// Timeout bounds a JSON request. Long-lived routes such as the notification
// socket must be mounted outside it, since http.TimeoutHandler cannot hijack.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: "REQUEST_TIMEOUT", Message: "request timed out"},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(message))
	}
}
