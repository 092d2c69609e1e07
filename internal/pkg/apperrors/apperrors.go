package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP boundary can map it to a
// transport status without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidInput
	KindInvalidState
	KindInsufficientSeats
	KindDuplicatePayment
	KindDependencyFailure
)

// AppError is a typed business-rule violation. All violations are detected
// before any write and propagate up through the transaction boundary.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by kind so errors.Is works with sentinel-style checks
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Kind == appErr.Kind
	}
	return false
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message)
}

func InvalidInput(message string) *AppError {
	return New(KindInvalidInput, message)
}

func InvalidState(message string) *AppError {
	return New(KindInvalidState, message)
}

func InsufficientSeats(message string) *AppError {
	return New(KindInsufficientSeats, message)
}

func DuplicatePayment(message string) *AppError {
	return New(KindDuplicatePayment, message)
}

func DependencyFailure(message string, err error) *AppError {
	return Wrap(KindDependencyFailure, message, err)
}

// KindOf extracts the kind from an error chain, KindUnknown when absent
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
