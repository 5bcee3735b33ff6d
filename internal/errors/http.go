package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NewHTTPError composes the failure for a non-2xx response. The body is
// probed for a detail per DetailFields; an unparseable body leaves the base
// message alone.
func NewHTTPError(method, endpoint string, statusCode int, body []byte) *RequestError {
	msg := baseMessage(statusCode)
	if detail, ok := ExtractDetail(body); ok {
		msg += " - " + detail
	}
	return &RequestError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    msg,
		Body:       string(body),
		Underlying: fmt.Errorf("%s %s: status %d", method, endpoint, statusCode),
	}
}

// ExtractDetail returns the first non-empty DetailFields value of a JSON
// object body.
func ExtractDetail(body []byte) (string, bool) {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}
	for _, key := range DetailFields {
		if s := detailString(obj[key]); s != "" {
			return s, true
		}
	}
	return "", false
}

func detailString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

// NewNetworkError wraps a transport-level failure (no HTTP status).
func NewNetworkError(method, endpoint string, err error) *RequestError {
	return &RequestError{
		Method:     method,
		Endpoint:   endpoint,
		Message:    fmt.Sprintf("request failed: %s %s: %v", method, endpoint, err),
		Underlying: err,
	}
}

// NewDecodeError wraps a failure to parse a 2xx response body.
func NewDecodeError(method, endpoint string, statusCode int, body []byte, err error) *RequestError {
	return &RequestError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: 0,
		Message:    fmt.Sprintf("invalid response from %s %s (status %d): %v", method, endpoint, statusCode, err),
		Body:       string(body),
		Underlying: err,
	}
}
