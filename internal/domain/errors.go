package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrCSRFRejected marks a 403 caused by a missing anti-forgery token.
	ErrCSRFRejected = errors.New("csrf token rejected")
	// ErrTransport marks failures where no response was received.
	ErrTransport = errors.New("store api unreachable")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// ErrorKind tags a normalized ServerError.
type ErrorKind string

const (
	KindGeneric ErrorKind = "generic"
	KindField   ErrorKind = "field"
)

// ServerError is the single normalized shape of an API error body.
type ServerError struct {
	Status  int
	Kind    ErrorKind
	Field   string // set when Kind == KindField
	Message string
}

func (e *ServerError) Error() string {
	if e.Kind == KindField && e.Field != "" {
		return fmt.Sprintf("store api %d: %s: %s", e.Status, e.Field, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("store api %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("store api %d: %s", e.Status, e.Message)
}

// Display is the text shown to a customer.
func (e *ServerError) Display() string {
	if e.Kind == KindField && e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrCSRFRejected:
		return e.Status == http.StatusForbidden && strings.Contains(e.Message, "CSRF")
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// TransportError wraps a request that never produced a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }
