package clipdex

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRequestFailed covers network failures, non-2xx responses and
	// undecodable bodies alike.
	ErrRequestFailed = errors.New("backend request failed")
	// ErrInvalidInput signals a call rejected before any request was sent.
	ErrInvalidInput = errors.New("invalid input")
)

// RequestError describes a failed backend call. StatusCode is zero when no
// response was received.
type RequestError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "clipdex: %s: %s %s", e.Op, e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %s", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

// Unwrap exposes both ErrRequestFailed and the underlying cause, if any.
func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequestFailed}
	}
	return []error{ErrRequestFailed, e.Err}
}

func invalidInput(op, msg string) error {
	return fmt.Errorf("clipdex: %s: %w: %s", op, ErrInvalidInput, msg)
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
