package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// errorEnvelope is the backend's structured error body.
type errorEnvelope struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// RequestError is returned for every non-2xx backend response.
type RequestError struct {
	Status   int
	Body     []byte
	envelope errorEnvelope
}

func newRequestError(status int, body []byte) *RequestError {
	e := &RequestError{Status: status, Body: body}
	// Best effort: the body is not always the structured envelope.
	_ = json.Unmarshal(body, &e.envelope)
	return e
}

func (e *RequestError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("api: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api: request failed with status %d: %s", e.Status, msg)
}

// Message returns the human-readable message from the error envelope, if any.
func (e *RequestError) Message() string {
	if m := strings.TrimSpace(e.envelope.Message); m != "" {
		return m
	}
	return strings.TrimSpace(e.envelope.Error)
}

// Code returns the machine-readable error code from the envelope, if any.
func (e *RequestError) Code() string {
	return strings.TrimSpace(e.envelope.Error)
}

// sessionInvalidated reports whether the response is the backend's structured
// authentication failure, as opposed to an arbitrary 401. Only this shape
// triggers the global logout path.
func (e *RequestError) sessionInvalidated() bool {
	if e.Status != http.StatusUnauthorized {
		return false
	}
	return e.envelope.Error == "Unauthorized" || e.envelope.Message == "No token provided"
}
