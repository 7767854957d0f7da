package errors

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrMechanicNotFound is returned when a mechanic is not found.
	ErrMechanicNotFound = errors.New("mechanic not found")
	// ErrPartNotFound is returned when an inventory part is not found.
	ErrPartNotFound = errors.New("part not found")
	// ErrTicketNotFound is returned when a service ticket is not found.
	ErrTicketNotFound = errors.New("service ticket not found")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPartNumberTaken is returned when the part number is already in use.
	ErrPartNumberTaken = errors.New("part number already exists")

	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenMissing is returned when no bearer token accompanies the request.
	ErrTokenMissing = errors.New("missing or malformed authorization header")
	// ErrTokenExpired is returned when the bearer token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned when the token signature or claims do not verify.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenMalformed is returned when the token cannot be decoded or carries no usable subject.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenRevoked is returned when the token was revoked by logout.
	ErrTokenRevoked = errors.New("token has been revoked")

	// ErrForbidden is returned when the identity does not own the target resource.
	ErrForbidden = errors.New("unauthorized access")
	// ErrAdminRequired is returned when an admin-only operation is attempted by a regular user.
	ErrAdminRequired = errors.New("admin privileges required")

	// ErrInvalidRequest is returned when the request body cannot be parsed.
	ErrInvalidRequest = errors.New("invalid request body")
	// ErrInvalidID is returned when a path identifier is not a positive integer.
	ErrInvalidID = errors.New("invalid id")
	// ErrUnprocessable is returned when a field cannot be coerced to its declared type.
	ErrUnprocessable = errors.New("invalid data format")
	// ErrRateLimited is returned when a client exceeds a route limit.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError reports field level problems found before any store write.
type ValidationError struct {
	Code   string
	Fields map[string]string
}

// NewValidationError builds a ValidationError with the VALIDATION_ERROR code.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Code: "VALIDATION_ERROR", Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnknownReferenceError is returned when association IDs do not resolve to existing rows.
type UnknownReferenceError struct {
	Kind string // "mechanic" or "part"
	IDs  []uint
}

func (e *UnknownReferenceError) Error() string {
	return "one or more " + e.Kind + " IDs are invalid"
}

// PartInUseError is returned when deleting a part that is still referenced by tickets.
type PartInUseError struct {
	TicketCount int64
}

func (e *PartInUseError) Error() string {
	return "cannot delete part that is used in service tickets"
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// IsInternal reports whether the error maps to a 5xx response.
func (e *HTTPError) IsInternal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

var sentinels = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrMechanicNotFound, http.StatusNotFound, "MECHANIC_NOT_FOUND"},
	{ErrPartNotFound, http.StatusNotFound, "PART_NOT_FOUND"},
	{ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrPartNumberTaken, http.StatusConflict, "PART_NUMBER_TAKEN"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrTokenMissing, http.StatusUnauthorized, "TOKEN_MISSING"},
	{ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	{ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID"},
	{ErrTokenMalformed, http.StatusUnauthorized, "TOKEN_MALFORMED"},
	{ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrAdminRequired, http.StatusForbidden, "ADMIN_REQUIRED"},
	{ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
	{ErrUnprocessable, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		httpErr := NewHTTPError(http.StatusBadRequest, validationErr.Error(), validationErr.Code)
		if len(validationErr.Fields) > 0 {
			httpErr.Details = make(map[string]interface{}, len(validationErr.Fields))
			for k, v := range validationErr.Fields {
				httpErr.Details[k] = v
			}
		}
		return httpErr
	}

	var unknownErr *UnknownReferenceError
	if errors.As(err, &unknownErr) {
		httpErr := NewHTTPError(http.StatusBadRequest, unknownErr.Error(), "UNKNOWN_"+strings.ToUpper(unknownErr.Kind))
		httpErr.Details = map[string]interface{}{"ids": unknownErr.IDs}
		return httpErr
	}

	var inUseErr *PartInUseError
	if errors.As(err, &inUseErr) {
		httpErr := NewHTTPError(http.StatusConflict, inUseErr.Error(), "PART_IN_USE")
		httpErr.Details = map[string]interface{}{"ticket_count": inUseErr.TicketCount}
		return httpErr
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return NewHTTPError(s.status, s.err.Error(), s.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
