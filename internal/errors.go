package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnsupported  ErrorType = "UNSUPPORTED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeSchoolNameRequired ErrorCode = "SCHOOL_NAME_REQUIRED"
	ErrCodeSchoolNotFound     ErrorCode = "SCHOOL_NOT_FOUND"
	ErrCodeNoSchoolAvailable  ErrorCode = "NO_SCHOOL_AVAILABLE"
	ErrCodeInvalidSchoolType  ErrorCode = "INVALID_SCHOOL_TYPE"
	ErrCodeDuplicateSubject   ErrorCode = "DUPLICATE_SUBJECT"

	ErrCodeIncorrectPin     ErrorCode = "INCORRECT_PIN"
	ErrCodePinMismatch      ErrorCode = "PIN_MISMATCH"
	ErrCodeInvalidPinFormat ErrorCode = "INVALID_PIN_FORMAT"

	ErrCodeUnknownRole       ErrorCode = "UNKNOWN_ROLE"
	ErrCodeUnknownPermission ErrorCode = "UNKNOWN_PERMISSION"

	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	ErrCodeRestoreFailed            ErrorCode = "RESTORE_FAILED"
	ErrCodeUnsupportedRestoreFormat ErrorCode = "UNSUPPORTED_RESTORE_FORMAT"
	ErrCodeBackupVersionMismatch    ErrorCode = "BACKUP_VERSION_MISMATCH"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) > 0 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy carrying the underlying cause; the shared
// sentinel values stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	out := *e
	out.Cause = cause
	return &out
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	out := *e
	out.Details = details
	return &out
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewUnsupportedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnsupported,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrSchoolNameRequired = NewValidationError("school name is required", ErrCodeSchoolNameRequired)
	ErrSchoolNotFound     = NewNotFoundError("school not found", ErrCodeSchoolNotFound)
	ErrNoSchoolAvailable  = NewNotFoundError("no school available for this session", ErrCodeNoSchoolAvailable)
	ErrInvalidSchoolType  = NewValidationError("school type must be primary, secondary or higher", ErrCodeInvalidSchoolType)
	ErrDuplicateSubject   = NewConflictError("subject already exists", ErrCodeDuplicateSubject)

	ErrIncorrectPin     = NewValidationError("current PIN is incorrect", ErrCodeIncorrectPin)
	ErrPinMismatch      = NewValidationError("new PIN and confirmation do not match", ErrCodePinMismatch)
	ErrInvalidPinFormat = NewValidationError("PIN must be exactly 4 digits", ErrCodeInvalidPinFormat)

	ErrUnknownRole       = NewValidationError("unknown role in permission map", ErrCodeUnknownRole)
	ErrUnknownPermission = NewValidationError("permission does not reference a known module", ErrCodeUnknownPermission)

	ErrUserNotFound = NewNotFoundError("system user not found", ErrCodeUserNotFound)

	ErrRestoreFailed            = NewValidationError("backup document could not be parsed", ErrCodeRestoreFailed)
	ErrUnsupportedRestoreFormat = NewUnsupportedError("flat exports cannot be restored; use a structured backup", ErrCodeUnsupportedRestoreFormat)
	ErrBackupVersionMismatch    = NewUnsupportedError("backup was produced by an incompatible version", ErrCodeBackupVersionMismatch)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
