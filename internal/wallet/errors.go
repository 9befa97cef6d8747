package wallet

import (
	"errors"
	"fmt"
)

// Validation failures, in the order they are checked.
var (
	ErrInvalidPayoutNumber = errors.New("invalid payout number")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBelowMinimum        = errors.New("amount below minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ValidationError is a rejected withdrawal input. Message is the text
// shown to the user; Err is one of the sentinels above.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StoreError is a failed read or write against the balance store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("wallet: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage returns the text to show for err: the validation message for
// bad input, or the underlying failure for anything else.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *StoreError
	if errors.As(err, &se) {
		return "An error occurred: " + se.Err.Error()
	}
	return "An error occurred: " + err.Error()
}
