package models

import (
	"errors"
	"strings"
)

// Common errors used throughout the application
var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketAlreadyUsed   = errors.New("ticket already used")
	ErrBookingNotConfirmed = errors.New("confirmed booking not found")
	ErrNoPaymentForBooking = errors.New("no payment found for this booking")
	ErrUnsupportedPassType = errors.New("unsupported pass type")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotConfigured       = errors.New("provider not configured")
)

// ValidationError carries field-level detail for bad request input
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// IsValidation reports whether err is a field validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
