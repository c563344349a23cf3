package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AuthError indicates the backend rejected the stored token (HTTP 401).
// By the time it is returned the client has already cleared the stored
// session and fired its unauthorized hook.
type AuthError struct {
	Method string
	Path   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (401) on %s %s", e.Method, e.Path)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Method     string
	Path       string

	// Message is the human-readable reason extracted from the body, or
	// empty when the body carried none.
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d) on %s %s: %s",
			e.StatusCode, e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("unexpected status %d on %s %s",
		e.StatusCode, e.Method, e.Path)
}

// Message returns the backend-provided reason carried by err, or fallback
// when err has none. Views use it to turn any service error into the
// one-line banner text.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// extractMessage pulls a reason out of a DRF-style error body. It looks at
// the conventional keys first and then at field validation errors.
func extractMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return ""
	}

	for _, key := range []string{"error", "detail", "details", "message"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if msg := flattenMessage(raw); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if msg := flattenMessage(obj[k]); msg != "" {
			parts = append(parts, k+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func flattenMessage(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	return ""
}
