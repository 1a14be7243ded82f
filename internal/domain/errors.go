package domain

import (
	"errors"
	"strings"
)

// ErrorCode classifies a validation failure so callers can react without
// parsing messages.
type ErrorCode string

const (
	CodeRequired          ErrorCode = "required"
	CodeTooShort          ErrorCode = "too_short"
	CodeTooLong           ErrorCode = "too_long"
	CodeOutOfRange        ErrorCode = "out_of_range"
	CodeInvalidValue      ErrorCode = "invalid_value"
	CodeMenuItemNotFound  ErrorCode = "menu_item_not_found"
	CodeTableNotFound     ErrorCode = "table_not_found"
	CodeOrderNotFound     ErrorCode = "order_not_found"
	CodeInvalidTransition ErrorCode = "invalid_status_transition"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrMenuItemNotFound        = errors.New("menu item not found")
	ErrTableNotFound           = errors.New("table not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrMenuItemInUse           = errors.New("menu item is referenced by orders")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrTotalOverflow           = errors.New("order total is out of range")
	ErrDeleteSelf              = errors.New("cannot delete your own account")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Code    ErrorCode
	Message string
	cause   error
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e ValidationError) Unwrap() error {
	return e.cause
}

// ValidationErrors collects every field failure of one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, v := range e {
		errs[i] = v
	}
	return errs
}

// HasCode reports whether any entry carries code.
func (e ValidationErrors) HasCode(code ErrorCode) bool {
	for _, v := range e {
		if v.Code == code {
			return true
		}
	}
	return false
}

func (e *ValidationErrors) add(field string, code ErrorCode, message string) {
	*e = append(*e, ValidationError{Field: field, Code: code, Message: message})
}

func (e ValidationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NewValidationError wraps a sentinel error into a single-field validation
// failure, keeping errors.Is working against the sentinel.
func NewValidationError(field string, code ErrorCode, cause error) ValidationErrors {
	return ValidationErrors{{Field: field, Code: code, Message: cause.Error(), cause: cause}}
}
