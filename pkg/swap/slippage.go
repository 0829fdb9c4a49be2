package swap

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Slippage tolerance bounds, in percent
var (
	MinSlippage       = decimal.RequireFromString("0.1")
	MaxSlippage       = decimal.RequireFromString("50.0")
	ExcessiveSlippage = decimal.RequireFromString("5.0")

	hundred = decimal.NewFromInt(100)
)

// Recommendation tier boundaries by trade value
var (
	smallTradeLimit  = decimal.NewFromInt(100)
	mediumTradeLimit = decimal.NewFromInt(1000)
	largeTradeLimit  = decimal.NewFromInt(5000)
)

// ValidateSlippage checks that a slippage tolerance is within [0.1, 50]
func ValidateSlippage(slippage decimal.Decimal) error {
	if slippage.LessThan(MinSlippage) || slippage.GreaterThan(MaxSlippage) {
		return fmt.Errorf("%w: %s is not within [%s, %s]",
			ErrInvalidSlippage, slippage, MinSlippage, MaxSlippage)
	}
	return nil
}

// IsSlippageExcessive reports whether a slippage tolerance exceeds the
// threshold where users should be warned. The threshold itself is allowed.
func IsSlippageExcessive(slippage decimal.Decimal) bool {
	return slippage.GreaterThan(ExcessiveSlippage)
}

// RecommendSlippage suggests a slippage tolerance for a trade of the given
// value. Larger trades move the pool price more and need more headroom.
func RecommendSlippage(amount decimal.Decimal) SlippageRecommendation {
	var recommended decimal.Decimal
	var reason string
	switch {
	case amount.LessThan(smallTradeLimit):
		recommended = decimal.RequireFromString("0.5")
		reason = "small trade, minimal price impact expected"
	case amount.LessThan(mediumTradeLimit):
		recommended = decimal.RequireFromString("1.0")
		reason = "medium trade, moderate price impact possible"
	case amount.LessThan(largeTradeLimit):
		recommended = decimal.RequireFromString("2.0")
		reason = "large trade, higher price impact likely"
	default:
		recommended = decimal.RequireFromString("3.0")
		reason = "very large trade, significant price impact likely"
	}
	return SlippageRecommendation{
		RecommendedSlippage: recommended,
		Reason:              reason,
		IsExcessive:         IsSlippageExcessive(recommended),
	}
}

// CalculateMinimumReceived computes the worst-case output the user accepts
// at the given slippage tolerance.
func CalculateMinimumReceived(expectedAmount, slippage decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateSlippage(slippage); err != nil {
		return decimal.Zero, err
	}
	if !expectedAmount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: expected amount %s", ErrInvalidAmount, expectedAmount)
	}
	factor := decimal.NewFromInt(1).Sub(slippage.Div(hundred))
	return expectedAmount.Mul(factor).Round(amountScale), nil
}

// CalculatePriceImpact returns the percentage deviation between the
// expected and actually quoted output, rounded to 2 decimal places.
func CalculatePriceImpact(expectedAmount, actualAmount decimal.Decimal) decimal.Decimal {
	if !expectedAmount.IsPositive() {
		return decimal.Zero
	}
	return expectedAmount.Sub(actualAmount).Abs().
		Div(expectedAmount).
		Mul(hundred).
		Round(2)
}
