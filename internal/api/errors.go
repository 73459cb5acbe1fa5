package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Detail     string
	Method     string
	Path       string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API error: status %d", e.StatusCode)
}

// Is lets callers test an [*Error] against the shared sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case shared.ErrAPIRequest:
		return true
	case shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	}
	return false
}

// newError builds an [*Error] from a response body, extracting the detail message.
func newError(status int, method, path string, body []byte) *Error {
	return &Error{StatusCode: status, Detail: parseDetail(body), Method: method, Path: path}
}

// parseDetail understands {"detail": "..."} and FastAPI's {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

// IsAuthFailure reports whether err means the token was missing, invalid or expired.
func IsAuthFailure(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired)
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an [*Error].
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the text to show a user for err. Backend detail messages are shown verbatim,
// transport failures get a generic message, and fallback covers responses without detail.
// Cancelled requests produce no message.
func Message(err error, fallback string) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if fallback != "" {
			return fallback
		}
		return apiErr.Error()
	case errors.Is(err, shared.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return shared.NetworkErrorMessage
	}
	return err.Error()
}
