package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned for malformed or missing input. Wrap it with
	// a field-specific message: fmt.Errorf("%w: description is required", ErrValidation).
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the caller is authenticated but not permitted.
	ErrForbidden = errors.New("access denied")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrCompanyNotFound is returned when a referenced company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrExpenseNotFound is returned when a referenced expense does not exist.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrExpenseProcessed is returned when deciding an expense that is no longer pending.
	ErrExpenseProcessed = errors.New("expense has already been processed")
	// ErrRoleAlreadyAssigned is returned when the target user is not pending assignment.
	ErrRoleAlreadyAssigned = errors.New("user already has an assigned role")
	// ErrInvalidManager is returned when the supplied manager reference is unusable.
	ErrInvalidManager = errors.New("invalid manager ID")
	// ErrInvalidAmount is returned when an expense amount is not a positive value.
	ErrInvalidAmount = errors.New("amount must be a positive number")
	// ErrInvalidReceipt is returned when an uploaded receipt violates size or type limits.
	ErrInvalidReceipt = errors.New("only JPEG, PNG, and PDF files up to 5MB are allowed")
)

// ErrorResponse represents a standardized error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
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
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unrecognized errors are
// surfaced as opaque internal failures so store details never leak to clients.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCompanyNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "COMPANY_NOT_FOUND")
	case errors.Is(err, ErrExpenseNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EXPENSE_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrExpenseProcessed):
		return NewHTTPError(http.StatusConflict, err.Error(), "EXPENSE_ALREADY_PROCESSED")
	case errors.Is(err, ErrRoleAlreadyAssigned):
		return NewHTTPError(http.StatusConflict, err.Error(), "ROLE_ALREADY_ASSIGNED")
	case errors.Is(err, ErrInvalidManager):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_MANAGER")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrInvalidReceipt):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RECEIPT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
