package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when the backend rejects the bearer token (401 or 403).
var ErrUnauthorized = errors.New("backend: unauthorized")

// ValidationError reports a rejected request: either a local check that failed before
// anything was sent, or an HTTP 422 from the backend. Message is the first message.
type ValidationError struct {
	Status  int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("backend: validation failed on %s: %s", e.Field, e.Message)
	}
	return "backend: validation failed: " + e.Message
}

// ServerError is any other non-2xx response. Message is the body's "message" field when
// present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// NotFound reports whether the backend answered 404.
func (e *ServerError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// TransportError means no response was received.
type TransportError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("backend: %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr) && serverErr.NotFound()
}

// statusError converts a non-2xx response into the error taxonomy.
func statusError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, status)
	case status == http.StatusUnprocessableEntity:
		field, message := firstValidationMessage(body)
		if message == "" {
			message = bodyMessage(body)
		}
		return &ValidationError{Status: status, Field: field, Message: message}
	default:
		return &ServerError{Status: status, Message: bodyMessage(body)}
	}
}

func bodyMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Error)
}

// firstValidationMessage returns the first message of the first field of an
// {"errors": {"field": ["message", ...]}} body, in document order.
func firstValidationMessage(body []byte) (string, string) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", ""
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", ""
		}
		key, _ := tok.(string)
		if key != "errors" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return "", ""
			}
			continue
		}
		return firstFieldMessage(dec)
	}
	return "", ""
}

func firstFieldMessage(dec *json.Decoder) (string, string) {
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", ""
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", ""
		}
		field, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return "", ""
		}
		var messages []string
		if err := json.Unmarshal(raw, &messages); err == nil {
			for _, msg := range messages {
				if msg = strings.TrimSpace(msg); msg != "" {
					return field, msg
				}
			}
			continue
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
			return field, strings.TrimSpace(single)
		}
	}
	return "", ""
}
