package apperrors

import "errors"

// Error taxonomy. Every error returned by a service wraps exactly one of these.
var (
	// 400
	ErrValidation       = errors.New("validation failed")
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// 401
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionRevoked     = errors.New("session revoked")

	// 403
	ErrPermissionDenied = errors.New("permission denied")

	// 404
	ErrResourceNotFound = errors.New("resource not found")

	// 409
	ErrConflict = errors.New("conflict")

	// 500 / 502
	ErrUpstreamStorage = errors.New("object storage failure")
	ErrUpstreamService = errors.New("upstream service failure")
	ErrNotConfigured   = errors.New("service not configured")
	ErrPersistence     = errors.New("persistence failure")
	ErrInternal        = errors.New("internal error")
)

// Not-found errors with their client messages
var (
	ErrStudentNotFound = NewCustomError(ErrResourceNotFound, "Student not found")
	ErrEventNotFound   = NewCustomError(ErrResourceNotFound, "Event not found")
)

// CustomError carries a client-facing message alongside the taxonomy sentinel
// and, optionally, the underlying cause for development diagnostics.
type CustomError struct {
	Err     error
	Message string
	// Detail is safe to show in every environment, unlike Cause
	Detail  string
	Cause   error
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

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewCustomError creates a CustomError for a taxonomy sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithCause attaches the underlying error
func (e *CustomError) WithCause(cause error) *CustomError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithDetail attaches a client-safe detail string
func (e *CustomError) WithDetail(detail string) *CustomError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	clone := *e
	clone.Details = details
	return &clone
}

// NewValidationError creates a 400 error with a message
func NewValidationError(message string) error {
	return NewCustomError(ErrValidation, message)
}

// NewUnauthorizedError creates a 401 error with a message
func NewUnauthorizedError(message string) error {
	return NewCustomError(ErrUnauthorized, message)
}

// NewResourceNotFoundError creates a 404 error with a message
func NewResourceNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewConflictError creates a 409 error with a message
func NewConflictError(message string) error {
	return NewCustomError(ErrConflict, message)
}

// NewForbiddenError creates a 403 error with a message
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewPersistenceError creates a 500 error for a store failure that was not otherwise classified
func NewPersistenceError(message string, cause error) error {
	return NewCustomError(ErrPersistence, message).WithCause(cause)
}

// NewUpstreamStorageError creates a 500 error for an object store failure
func NewUpstreamStorageError(message string, cause error) error {
	return NewCustomError(ErrUpstreamStorage, message).WithCause(cause)
}

// NewUpstreamServiceError creates a 502 error for a failing downstream service
func NewUpstreamServiceError(message string, cause error) error {
	return NewCustomError(ErrUpstreamService, message).WithCause(cause)
}

// NewNotConfiguredError creates a 500 error for a feature missing its configuration
func NewNotConfiguredError(message string) error {
	return NewCustomError(ErrNotConfigured, message)
}

// NewInternalError creates a 500 error for anything unclassified
func NewInternalError(message string, cause error) error {
	return NewCustomError(ErrInternal, message).WithCause(cause)
}

// Message returns the client-facing message of err, or fallback if err carries none
func Message(err error, fallback string) string {
	var custom *CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// Cause returns the underlying cause recorded on a CustomError, if any
func Cause(err error) error {
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Cause
	}
	return nil
}
