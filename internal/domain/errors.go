package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNotFoundOrUnauthorized = errors.New("event not found or unauthorized")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrCapacityViolation      = errors.New("capacity below issued quantity")
	ErrEventNotBookable       = errors.New("event not bookable")
	ErrPaymentRejected        = errors.New("payment rejected")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrBelowMinimum           = errors.New("amount below minimum payout")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrEmailTaken             = errors.New("email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")
	ErrDuplicateQRCode        = errors.New("duplicate qr code")
)

// ValidationError 字段级校验失败，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
