package restclient

import (
	"errors"
	"fmt"
)

// Error is a non-2xx answer from an upstream service.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func NewError(method string, url string, status int, body []byte) *Error {
	return &Error{Method: method, URL: url, StatusCode: status, Body: body}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: upstream returned %d", e.Method, e.URL, e.StatusCode)
}

func IsStatus(err error, status int) bool {
	var upstream *Error
	if errors.As(err, &upstream) {
		return upstream.StatusCode == status
	}

	return false
}
