package tasksapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for tasks API operations.
var (
	// ErrInvalidPayload is returned when a create payload fails validation before any request is sent.
	ErrInvalidPayload = errors.New("invalid task payload")

	// ErrClientNotConfigured is returned when the module is used before its client exists.
	ErrClientNotConfigured = errors.New("tasks api client not configured")
)

// APIError is the typed failure of a tasks API call.
//
// StatusCode is zero when no response was received (network failure, timeout).
// ServerMessages holds the structured "message" field of an error response body,
// which the server sends either as a string or as a list of validation messages.
type APIError struct {
	Op               string   `json:"op"`
	StatusCode       int      `json:"status_code,omitempty"`
	ServerMessages   []string `json:"server_messages,omitempty"`
	TransportMessage string   `json:"transport_message,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message("request failed")
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Message returns the text to show a user: the server message, else the
// transport message, else fallback. Multiple server messages are joined with ", ".
func (e *APIError) Message(fallback string) string {
	if len(e.ServerMessages) > 0 {
		return strings.Join(e.ServerMessages, ", ")
	}
	if e.TransportMessage != "" {
		return e.TransportMessage
	}
	return fallback
}

// IsTransport reports whether the call failed before a response arrived.
func (e *APIError) IsTransport() bool {
	return e.StatusCode == 0
}

// ErrorMessage extracts a display message from any error returned by this package
// or by the adapter, using the same precedence as APIError.Message.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message(fallback)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// toAPIError converts err into an *APIError so it can travel inside a service reply.
func toAPIError(op string, err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{Op: op, TransportMessage: err.Error()}
}

type errorBody struct {
	Message json.RawMessage `json:"message"`
}

// parseServerMessages reads the "message" field of an error body.
// Empty strings and empty lists count as absent.
func parseServerMessages(body []byte) []string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Message) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(eb.Message, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(eb.Message, &many); err == nil && len(many) > 0 {
		return many
	}
	return nil
}
