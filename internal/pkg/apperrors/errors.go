package apperrors

import "errors"

// Error kinds. Every error returned by a service to a handler wraps exactly one of these.
var (
	// ErrValidation marks missing or malformed required input
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation
	ErrConflict = errors.New("conflict")
	// ErrAuth marks bad credentials or a missing/invalid session
	ErrAuth = errors.New("authentication failed")
	// ErrNotFound marks an operation on an absent id
	ErrNotFound = errors.New("resource not found")
)

// CustomError carries a user-facing message on top of an error kind
type CustomError struct {
	Err     error
	Message string
	Field   string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithField records which input field caused the error
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

func NewValidationError(message string) *CustomError {
	return &CustomError{Err: ErrValidation, Message: message}
}

func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message}
}

func NewAuthError(message string) *CustomError {
	return &CustomError{Err: ErrAuth, Message: message}
}

func NewNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrNotFound, Message: message}
}

// Message returns the user-facing text of err, or fallback when err carries none
func Message(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsKnown reports whether err wraps one of the recoverable kinds
func IsKnown(err error) bool {
	return Is(err, ErrValidation, ErrConflict, ErrAuth, ErrNotFound)
}
