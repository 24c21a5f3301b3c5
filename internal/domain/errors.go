package domain

import "net/http"

type ErrorCode string

const (
	ErrorCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrorCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	ErrorCodeAuthorization  ErrorCode = "AUTHORIZATION_ERROR"
	ErrorCodeJobClosed      ErrorCode = "JOB_CLOSED"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict       ErrorCode = "CONFLICT"
	ErrorCodeDependency     ErrorCode = "DEPENDENCY_UNAVAILABLE"
)

// DomainError is the single error type business code returns to the HTTP
// layer. HTTPStatus drives the response code, Code the machine-readable
// error name.
type DomainError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewValidationError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeValidation, Message: msg, HTTPStatus: http.StatusBadRequest}
}

func NewAuthenticationError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeAuthentication, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

func NewAuthorizationError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeAuthorization, Message: msg, HTTPStatus: http.StatusForbidden}
}

// NewJobClosedError is authorization-class: the job exists but no longer
// accepts applications.
func NewJobClosedError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeJobClosed, Message: msg, HTTPStatus: http.StatusForbidden}
}

func NewNotFoundError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

func NewConflictError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeConflict, Message: msg, HTTPStatus: http.StatusConflict}
}

func NewDependencyUnavailableError(msg string) *DomainError {
	return &DomainError{Code: ErrorCodeDependency, Message: msg, HTTPStatus: http.StatusServiceUnavailable}
}
