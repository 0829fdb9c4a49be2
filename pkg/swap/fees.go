package swap

import "github.com/shopspring/decimal"

// amountScale is the precision fees and received amounts are rounded to
const amountScale = 8

// FeeConfig holds the platform fee schedule. It is injected at composition
// so quoting and execution always price with the same values.
type FeeConfig struct {
	// Percentage is the platform fee taken on every swap, e.g. 0.5 for 0.5%
	Percentage decimal.Decimal

	// HighVolumePercentage and HighVolumeThreshold are reserved for
	// volume-tiered pricing. TODO: apply the discounted rate once the
	// tiered pricing rollout is approved.
	HighVolumePercentage decimal.Decimal
	HighVolumeThreshold  decimal.Decimal
}

// DefaultFeeConfig returns the standard fee schedule
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		Percentage:           decimal.RequireFromString("0.5"),
		HighVolumePercentage: decimal.RequireFromString("0.3"),
		HighVolumeThreshold:  decimal.NewFromInt(10000),
	}
}

// Fee computes the platform fee on a swap amount. Non-positive amounts
// carry no fee.
func (c FeeConfig) Fee(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(c.Percentage).Div(decimal.NewFromInt(100)).Round(amountScale)
}

// Breakdown itemizes the fees on a swap of the given amount. DEX routing
// fees are embedded in the quoted rate, so only the platform fee is listed.
func (c FeeConfig) Breakdown(amount decimal.Decimal, feeToken string) FeeBreakdown {
	fee := c.Fee(amount)
	return FeeBreakdown{
		PlatformFee:           fee,
		PlatformFeePercentage: c.Percentage,
		DexFee:                decimal.Zero,
		TotalFee:              fee,
		FeeToken:              feeToken,
	}
}
