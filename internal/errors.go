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
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	ErrCodeRoleNotFound     ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleSlugExists   ErrorCode = "ROLE_SLUG_EXISTS"
	ErrCodeSystemRole       ErrorCode = "SYSTEM_ROLE_PROTECTED"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	ErrCodeStatusNotFound     ErrorCode = "STATUS_NOT_FOUND"
	ErrCodeStatusExists       ErrorCode = "STATUS_EXISTS"
	ErrCodeTransitionExists   ErrorCode = "TRANSITION_EXISTS"
	ErrCodeTransitionNotFound ErrorCode = "TRANSITION_NOT_FOUND"

	ErrCodeTaskNotFound         ErrorCode = "TASK_NOT_FOUND"
	ErrCodeInvalidTargetStatus  ErrorCode = "INVALID_TARGET_STATUS"
	ErrCodeTransitionNotAllowed ErrorCode = "TRANSITION_NOT_ALLOWED"
	ErrCodeRoleNotPermitted     ErrorCode = "ROLE_NOT_PERMITTED"
	ErrCodeRemarksRequired      ErrorCode = "REMARKS_REQUIRED"
	ErrCodeTaskVersionConflict  ErrorCode = "TASK_VERSION_CONFLICT"

	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeDepartmentExists   ErrorCode = "DEPARTMENT_EXISTS"

	ErrCodeNotificationRuleNotFound ErrorCode = "NOTIFICATION_RULE_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeNoPrincipal        ErrorCode = "NO_PRINCIPAL"
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

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Join() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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
	ErrNoPrincipal        = NewUnauthorizedError("Authentication required", ErrCodeNoPrincipal)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrRoleNotFound       = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrSystemRole         = NewForbiddenError("Cannot delete system roles", ErrCodeSystemRole)
	ErrStatusNotFound     = NewNotFoundError("Status not found", ErrCodeStatusNotFound)
	ErrTaskNotFound       = NewNotFoundError("Task not found", ErrCodeTaskNotFound)
	ErrDepartmentNotFound = NewNotFoundError("Department not found", ErrCodeDepartmentNotFound)
)

// NewForbiddenPermissionError builds the denial returned when the resolved
// permission set lacks the required resource:action string.
func NewForbiddenPermissionError(required string) *AppError {
	return NewForbiddenError(
		fmt.Sprintf("You do not have the %q permission", required),
		ErrCodePermissionDenied,
	)
}

// NewTransitionNotAllowedError carries both status names so the caller can
// show a human-readable reason.
func NewTransitionNotAllowedError(fromName, toName string) *AppError {
	return NewForbiddenError(
		fmt.Sprintf("Transition from %q to %q is not allowed", fromName, toName),
		ErrCodeTransitionNotAllowed,
	)
}

func NewRoleNotPermittedError(fromName, toName string) *AppError {
	return NewForbiddenError(
		fmt.Sprintf("Your role is not allowed to perform the transition from %q to %q", fromName, toName),
		ErrCodeRoleNotPermitted,
	)
}

func NewRemarksRequiredError(fromName, toName string) *AppError {
	return NewValidationError(
		fmt.Sprintf("Remarks are required for the transition from %q to %q", fromName, toName),
		ErrCodeRemarksRequired,
	)
}

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
