package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCredentialExpired is returned when the session token is past its exp claim.
var ErrCredentialExpired = errors.New("credential expired")

// Error is a non-success HTTP response from the API.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string // server-provided, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
}

// Message extracts the most human-readable text from err. Server messages
// win over the wrapped transport error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// serverMessage pulls message/detail out of an error body.
func serverMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := body[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
