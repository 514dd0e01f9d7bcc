package core

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors unwrap to one of these so callers can
// branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrIntegrity  = errors.New("integrity violation")
	ErrNotFound   = errors.New("not found")
)

// Field-level validation failures.
var (
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidInstallments = errors.New("installment count must be at least 1")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooLong  = errors.New("description too long (max 100 characters)")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidKind         = errors.New("invalid kind")
	ErrInvalidCostType     = errors.New("invalid cost type")
	ErrInvalidPeriod       = errors.New("invalid period type")
	ErrInvalidDueDay       = errors.New("due day must be between 1 and 31")
	ErrInvalidLastDigits   = errors.New("last digits must be 4 numbers")
	ErrInvalidColor        = errors.New("invalid card color")
	ErrThirdPartyRequired  = errors.New("third-party purchase requires a person")
	ErrThirdPartyForbidden = errors.New("third party set on a personal purchase")
	ErrCategoryRequired    = errors.New("category goal requires a category")
	ErrCategoryForbidden   = errors.New("category set on a non-category goal")
	ErrInvalidWindow       = errors.New("window end before start")
)

// ValidationError reports bad input detected before anything is persisted.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// IntegrityError reports an operation refused because other records depend
// on the target. Nothing is changed when it is returned.
type IntegrityError struct {
	Entity string
	Name   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Entity, e.Name, e.Reason)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// NotFoundError reports a missing record or one owned by another user.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
