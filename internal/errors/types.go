// Package errors normalizes every request failure into one error shape.
//
// Servers report failure details under different keys. The probe order in
// DetailFields is part of the client contract: the first non-empty field
// wins and is appended to the base status message.
package errors

import (
	"errors"
	"fmt"
)

// DetailFields lists the JSON body keys probed, in order, for a
// human-readable failure detail.
var DetailFields = []string{"error", "msg", "message"}

// RequestError is the single error shape returned by the request pipeline.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int    // 0 for transport, decode and context failures
	Message    string // composed, human-readable
	Body       string // raw response body for debugging
	Underlying error
}

// Error implements the error interface. It is exactly the composed message.
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain compatibility.
func (e *RequestError) Unwrap() error {
	return e.Underlying
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsStatus reports whether err is a RequestError with the given status.
func IsStatus(err error, code int) bool {
	return code != 0 && StatusOf(err) == code
}

// baseMessage is the status-only prefix shared by every HTTP failure.
func baseMessage(statusCode int) string {
	return fmt.Sprintf("HTTP error! status: %d", statusCode)
}
