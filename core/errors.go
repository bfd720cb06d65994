package core

import "errors"

// Identity and credential errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")       // 401 - deliberately generic
	ErrIdentityIncomplete = errors.New("provider identity is incomplete") // 400 - missing stable subject id
	ErrEmailExists        = errors.New("email already registered")        // 409
)

// Session errors
var (
	ErrInvalidToken   = errors.New("invalid session token")   // 401
	ErrSessionExpired = errors.New("session expired")         // 401
	ErrUnauthorized   = errors.New("insufficient permission") // 403
)

// Storage errors
var (
	ErrNotFound      = errors.New("record not found")            // 404
	ErrDuplicate     = errors.New("unique constraint violation") // handled internally, never surfaced
	ErrCacheNotFound = errors.New("record not found in cache")
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")     // 400
	ErrPasswordRequired = errors.New("password is required")  // 400
	ErrPasswordTooShort = errors.New("password is too short") // 400
	ErrPasswordTooLong  = errors.New("password is too long")  // 400
	ErrInvalidEmail     = errors.New("invalid email format")  // 400
)

// Config errors (server-side configuration)
var (
	ErrSecretRequired  = errors.New("session secret is required")  // 500
	ErrSecretTooShort  = errors.New("session secret too short")    // 500
	ErrStorageRequired = errors.New("storage adapter is required") // 500
)

// ErrorCode identifies a failure class in the error payload sent to clients.
type ErrorCode string

const (
	CodeInvalidToken       ErrorCode = "AUTH_INVALID_TOKEN"
	CodeUnauthorizedAccess ErrorCode = "AUTH_UNAUTHORIZED_ACCESS"
	CodeEmailExists        ErrorCode = "AUTH_EMAIL_ALREADY_EXISTS"
	CodeResourceNotFound   ErrorCode = "RESOURCE_NOT_FOUND"
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeInternalError      ErrorCode = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse is the wire shape for every error crossing the HTTP boundary.
// No internal detail, storage error text, or stack trace goes in Message.
type ErrorResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorCode"`
}
