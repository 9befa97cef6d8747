package wallet

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Rules are the withdrawal business rules.
type Rules struct {
	MinAmount    int64 // Smallest amount that can be withdrawn
	PayoutMinLen int   // Shortest accepted payout number
}

// DefaultRules returns the production rules: 10,000 coins and an 11-digit
// mobile number.
func DefaultRules() Rules {
	return Rules{
		MinAmount:    10000,
		PayoutMinLen: 11,
	}
}

func invalidPayout() error {
	return &ValidationError{Err: ErrInvalidPayoutNumber, Message: "Please enter a valid Bkash number."}
}

func invalidAmount() error {
	return &ValidationError{Err: ErrInvalidAmount, Message: "Please enter a valid amount."}
}

func belowMinimum(min int64) error {
	return &ValidationError{
		Err:     ErrBelowMinimum,
		Message: fmt.Sprintf("Minimum withdraw amount is %s coins.", humanize.Comma(min)),
	}
}

func insufficientBalance() error {
	return &ValidationError{Err: ErrInsufficientBalance, Message: "You do not have enough coins to withdraw."}
}

// ParseAmount reads the amount field. Only a positive whole number is
// accepted.
func ParseAmount(input string) (int64, error) {
	amount, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || amount <= 0 {
		return 0, invalidAmount()
	}
	return amount, nil
}

func (r Rules) checkPayout(payoutNumber string) error {
	payoutNumber = strings.TrimSpace(payoutNumber)
	if payoutNumber == "" || utf8.RuneCountInString(payoutNumber) < r.PayoutMinLen {
		return invalidPayout()
	}
	return nil
}

// checkRequest runs the checks that do not need the balance.
func (r Rules) checkRequest(payoutNumber string, amount int64) error {
	if err := r.checkPayout(payoutNumber); err != nil {
		return err
	}
	if amount <= 0 {
		return invalidAmount()
	}
	if amount < r.MinAmount {
		return belowMinimum(r.MinAmount)
	}
	return nil
}

// Validate checks a withdrawal against the rules and the current balance.
// The first failing rule wins.
func Validate(r Rules, payoutNumber string, amount, balance int64) error {
	if err := r.checkRequest(payoutNumber, amount); err != nil {
		return err
	}
	if amount > balance {
		return insufficientBalance()
	}
	return nil
}

// ValidateInput is Validate over the raw form fields. The payout number is
// checked before the amount is parsed.
func ValidateInput(r Rules, payoutNumber, amountInput string, balance int64) (int64, error) {
	if err := r.checkPayout(payoutNumber); err != nil {
		return 0, err
	}
	amount, err := ParseAmount(amountInput)
	if err != nil {
		return 0, err
	}
	if err := Validate(r, payoutNumber, amount, balance); err != nil {
		return 0, err
	}
	return amount, nil
}
