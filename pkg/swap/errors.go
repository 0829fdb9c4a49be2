package swap

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when a swap amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrInvalidSlippage is returned when a slippage tolerance is outside the allowed range
	ErrInvalidSlippage = errors.New("slippage out of range")

	// ErrUnsupportedPair is returned when either token of a pair is not in the catalog
	ErrUnsupportedPair = errors.New("unsupported token pair")

	// ErrSameToken is returned when the source and destination tokens are equal
	ErrSameToken = errors.New("cannot swap a token for itself")
)

// InsufficientBalanceError is returned when the wallet cannot cover the swap
// amount plus the platform fee. It carries the amounts so the caller can
// build a specific message without another balance lookup.
type InsufficientBalanceError struct {
	RequiredAmount  decimal.Decimal
	AvailableAmount decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s",
		e.RequiredAmount.String(), e.AvailableAmount.String())
}

// Shortfall returns how much the wallet is short
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.RequiredAmount.Sub(e.AvailableAmount)
}
