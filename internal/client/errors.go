// ABOUTME: Error taxonomy for API calls
// ABOUTME: Sentinel errors, typed API errors and DRF-style error body parsing

package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnauthorized matches any 401 that survived the refresh protocol
	ErrUnauthorized = errors.New("not authorized")
	// ErrSessionExpired means the refresh credential was rejected; the
	// stored credentials have been cleared
	ErrSessionExpired = errors.New("session expired")
	// ErrNotFound matches 404 responses
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest marks client-side validation failures
	ErrInvalidRequest = errors.New("invalid request")
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// APIError represents a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return "backend error: " + e.Message
}

// Is lets errors.Is match the status-based sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// parseAPIError decodes {"detail": ...}, {"error": ...} or
// {"field": ["msg", ...]} bodies
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	for _, key := range []string{"detail", "error", "message"} {
		var msg string
		if v, ok := raw[key]; ok && json.Unmarshal(v, &msg) == nil && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	apiErr.Fields = make(map[string][]string)
	for field, v := range raw {
		var msgs []string
		if err := json.Unmarshal(v, &msgs); err != nil {
			var msg string
			if json.Unmarshal(v, &msg) != nil {
				continue
			}
			msgs = []string{msg}
		}
		apiErr.Fields[field] = msgs
	}
	apiErr.Message = formatFieldErrors(apiErr.Fields)
	return apiErr
}

// formatFieldErrors renders field errors in a stable order
func formatFieldErrors(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		msg := strings.Join(fields[name], " ")
		if name == "non_field_errors" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, name+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// UserMessage renders err for inline display, including any hints
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if hint := errors.FlattenHints(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}
