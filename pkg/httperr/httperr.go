package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Kind classifies a request failure. The transport layer maps each kind
// to an HTTP status code; services return kinds, never status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInsufficientStock
	KindNotFound
	KindUpstreamUnavailable
	KindUnauthenticated
	KindForbidden
)

// Error carries a failure kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error keeping err as the unwrappable cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		cause:   err,
	}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindInsufficientStock:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Write renders err as a JSON error response. Unclassified errors are
// reported as a generic server error without leaking the cause.
func Write(w http.ResponseWriter, err error) {
	status := Status(KindOf(err))

	message := "internal server error"
	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(errorResponse{Status: status, Message: message}); encodeErr != nil {
		slog.Error("Error sending error response", "error", encodeErr)
	}
}
