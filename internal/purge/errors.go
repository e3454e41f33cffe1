package purge

import (
	"errors"
	"fmt"
)

// Kind classifies why part or all of a purge did not happen.
type Kind string

const (
	// MissingMetadata means no primary path could be resolved for the attachment.
	MissingMetadata Kind = "MissingMetadata"
	// InvalidConfiguration means the bucket or region is empty or still a placeholder.
	InvalidConfiguration Kind = "InvalidConfiguration"
	// ServiceUnavailable is a transport or service level failure of the whole batch.
	ServiceUnavailable Kind = "ServiceUnavailable"
	// PerKeyDeleteError is a failure the storage service reported for a single key.
	PerKeyDeleteError Kind = "PerKeyDeleteError"
)

// Sentinel errors for use with errors.Is.
var (
	ErrMissingMetadata      = errors.New("purge: missing attachment metadata")
	ErrInvalidConfiguration = errors.New("purge: invalid storage configuration")
)

// Error is returned for failures detected before any request is sent.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%v: %s", e.sentinel(), e.Detail)
}

// Unwrap lets errors.Is match the sentinel for the kind.
func (e *Error) Unwrap() error {
	return e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case MissingMetadata:
		return ErrMissingMetadata
	case InvalidConfiguration:
		return ErrInvalidConfiguration
	default:
		return fmt.Errorf("purge: %s", e.Kind)
	}
}

func missingMetadata(detail string) *Error {
	return &Error{Kind: MissingMetadata, Detail: detail}
}

func invalidConfiguration(detail string) *Error {
	return &Error{Kind: InvalidConfiguration, Detail: detail}
}

// KindOf reports the Kind carried by err, or "" if err is not a purge error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
