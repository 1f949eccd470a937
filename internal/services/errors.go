package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMediaType marks payloads rejected locally because their
	// declared content type is not an image.
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrDeviceUnavailable marks camera acquisition failures (no device,
	// permission denied, capture tool missing).
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrTransport marks network and timeout failures talking to the backend.
	ErrTransport = errors.New("transport failure")
	// ErrRemoteRejection marks non-success backend responses.
	ErrRemoteRejection = errors.New("remote rejection")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrNotFound        = errors.New("not found")
)

var markers = []error{
	ErrInvalidMediaType,
	ErrDeviceUnavailable,
	ErrTransport,
	ErrRemoteRejection,
	ErrValidation,
	ErrConfiguration,
	ErrNotFound,
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransport
	}
	return &wrappedError{
		marker:    marker,
		stage:     strings.TrimSpace(stage),
		operation: strings.TrimSpace(operation),
		message:   strings.TrimSpace(message),
		cause:     err,
	}
}

type wrappedError struct {
	marker    error
	stage     string
	operation string
	message   string
	cause     error
}

func (e *wrappedError) Error() string {
	detail := buildDetail(e.stage, e.operation, e.message)
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker, detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.marker, detail)
}

func (e *wrappedError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.marker}
	}
	return []error{e.marker, e.cause}
}

// ErrorDetails is the display-oriented breakdown of a wrapped error.
type ErrorDetails struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
}

// Details extracts the marker, stage and human message from err. Errors that
// were not produced by Wrap report their full text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var wrapped *wrappedError
	if errors.As(err, &wrapped) {
		return ErrorDetails{
			Marker:    wrapped.marker,
			Stage:     wrapped.stage,
			Operation: wrapped.operation,
			Message:   wrapped.message,
		}
	}
	details := ErrorDetails{Message: strings.TrimSpace(err.Error())}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			details.Marker = marker
			break
		}
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
