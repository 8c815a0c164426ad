package apierror

import (
	"errors"
	"fmt"
)

// maxDetail bounds how much of a response body is kept in an Error.
const maxDetail = 512

// Error is a non-success HTTP reply from a remote API.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail attaches a response body, truncated to maxDetail bytes.
func WithDetail(code int, message, detail string) *Error {
	if len(detail) > maxDetail {
		detail = detail[:maxDetail] + "..."
	}
	return &Error{Code: code, Message: message, Detail: detail}
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
