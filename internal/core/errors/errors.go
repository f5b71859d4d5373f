package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication
	ErrUnauthorized = errors.New("unauthorized")

	// Ticket validation
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketIDRequired  = errors.New("ticket ID is required")
	ErrInvalidStatus     = errors.New("invalid ticket status")
	ErrInvalidPriority   = errors.New("invalid ticket priority")
	ErrInvalidDateFilter = errors.New("invalid date filter")
	ErrInvalidTimeZone   = errors.New("invalid time zone")
	ErrEmptyUpdate       = errors.New("update contains no fields")

	// Remote API
	ErrRemoteQuery    = errors.New("remote query failed")
	ErrRemoteMutation = errors.New("remote mutation failed")

	ErrRateLimited = errors.New("rate limit exceeded")
)

// RemoteError carries the message returned by the remote API (or the
// transport failure) behind one of the ErrRemote* sentinels. Network
// failures and server-side rejections are not distinguished.
type RemoteError struct {
	Kind      error  // ErrRemoteQuery or ErrRemoteMutation
	Operation string // GraphQL operation name
	Err       error

	// ServerMessage is set when the API itself rejected the request.
	ServerMessage string
}

// NewMutationError wraps a failed mutation.
func NewMutationError(operation string, err error) *RemoteError {
	return &RemoteError{Kind: ErrRemoteMutation, Operation: operation, Err: err}
}

// NewQueryError wraps a failed query.
func NewQueryError(operation string, err error) *RemoteError {
	return &RemoteError{Kind: ErrRemoteQuery, Operation: operation, Err: err}
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Operation, e.Err)
}

// Unwrap exposes both the sentinel kind and the cause.
func (e *RemoteError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Message returns the server's message, or the transport failure.
func (e *RemoteError) Message() string {
	if e.ServerMessage != "" {
		return e.ServerMessage
	}
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
