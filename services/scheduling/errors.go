package scheduling

import (
	"errors"
	"fmt"
)

// Error codes for the engine's failure taxonomy. Handlers map these to HTTP
// statuses; retryable codes additionally carry a retry hint to the caller.
const (
	CodeValidation             = "validation"
	CodeConflict               = "conflict"
	CodeAuthorization          = "authorization"
	CodeInvalidState           = "invalidState"
	CodeConcurrentModification = "concurrentModification"
	CodeNotFound               = "notFound"
	CodeGateway                = "gateway"
)

// EngineError is the machine-readable error returned by every engine
// operation.
type EngineError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(format string, args ...any) error {
	return &EngineError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &EngineError{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) error {
	return &EngineError{Code: CodeAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...any) error {
	return &EngineError{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewConcurrentModificationError(format string, args ...any) error {
	return &EngineError{Code: CodeConcurrentModification, Message: fmt.Sprintf(format, args...), Retryable: true}
}

func NewNotFoundError(format string, args ...any) error {
	return &EngineError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewGatewayError(format string, args ...any) error {
	return &EngineError{Code: CodeGateway, Message: fmt.Sprintf(format, args...), Retryable: true}
}

// CodeOf extracts the engine error code, or "" for foreign errors.
func CodeOf(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsRetryable reports whether the caller may safely retry the operation.
func IsRetryable(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Retryable
}
