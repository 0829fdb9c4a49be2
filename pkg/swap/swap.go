// Package swap defines the domain types for the token swap pipeline.
package swap

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the current state of a swap transaction
type Status string

const (
	// StatusPending means the swap has been submitted but not yet confirmed on chain
	StatusPending Status = "pending"
	// StatusConfirmed means the swap has been confirmed on chain. Terminal.
	StatusConfirmed Status = "confirmed"
	// StatusFailed means the swap failed or reverted. Terminal.
	StatusFailed Status = "failed"
)

// Terminal reports whether the status allows no further transitions
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Transaction is one attempted token swap, persisted for its whole lifecycle.
// Records are never deleted; failed submissions keep the error message.
type Transaction struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	WalletAddress         string
	FromToken             string
	ToToken               string
	FromTokenSymbol       string
	ToTokenSymbol         string
	FromAmount            decimal.Decimal
	ToAmount              decimal.Decimal
	ExchangeRate          decimal.Decimal
	PlatformFee           decimal.Decimal
	PlatformFeePercentage decimal.Decimal
	GasUsed               *string
	GasCost               *decimal.Decimal
	SlippageTolerance     decimal.Decimal
	PriceImpact           *decimal.Decimal
	MinimumReceived       decimal.Decimal
	DexProvider           string
	TransactionHash       *string
	Status                Status
	ErrorMessage          *string
	CreatedAt             time.Time
	ConfirmedAt           *time.Time
	UpdatedAt             time.Time
}

// QuoteResult is the fully priced quote shown to the user.
// ValidUntil is advisory; execution never checks it and always re-derives
// from a fresh aggregator call.
type QuoteResult struct {
	FromToken             string          `json:"fromToken"`
	FromTokenSymbol       string          `json:"fromTokenSymbol"`
	ToToken               string          `json:"toToken"`
	ToTokenSymbol         string          `json:"toTokenSymbol"`
	FromAmount            decimal.Decimal `json:"fromAmount"`
	ToAmount              decimal.Decimal `json:"toAmount"`
	ExchangeRate          decimal.Decimal `json:"exchangeRate"`
	PlatformFee           decimal.Decimal `json:"platformFee"`
	PlatformFeePercentage decimal.Decimal `json:"platformFeePercentage"`
	EstimatedGas          string          `json:"estimatedGas"`
	EstimatedGasCost      decimal.Decimal `json:"estimatedGasCost"`
	PriceImpact           decimal.Decimal `json:"priceImpact"`
	SlippageTolerance     decimal.Decimal `json:"slippageTolerance"`
	MinimumReceived       decimal.Decimal `json:"minimumReceived"`
	ValidUntil            time.Time       `json:"quoteValidUntil"`
	Provider              string          `json:"provider"`
}

// FeeBreakdown itemizes the fees charged on a swap
type FeeBreakdown struct {
	PlatformFee           decimal.Decimal `json:"platformFee"`
	PlatformFeePercentage decimal.Decimal `json:"platformFeePercentage"`
	DexFee                decimal.Decimal `json:"dexFee"`
	TotalFee              decimal.Decimal `json:"totalFee"`
	FeeToken              string          `json:"feeToken"`
}

// SlippageRecommendation is a suggested slippage setting for a trade
type SlippageRecommendation struct {
	RecommendedSlippage decimal.Decimal `json:"recommendedSlippage"`
	Reason              string          `json:"reason"`
	IsExcessive         bool            `json:"isExcessive"`
}

// BalanceValidation is the outcome of a pre-swap balance sufficiency check
type BalanceValidation struct {
	TokenAddress         string
	CurrentBalance       decimal.Decimal
	RequiredAmount       decimal.Decimal
	PlatformFee          decimal.Decimal
	TotalRequired        decimal.Decimal
	HasSufficientBalance bool
	ShortfallAmount      decimal.Decimal
}

// ExecutionResult is returned to the caller after a swap has been submitted
type ExecutionResult struct {
	SwapID           uuid.UUID       `json:"swapId"`
	TransactionHash  string          `json:"transactionHash"`
	Status           Status          `json:"status"`
	ExpectedToAmount decimal.Decimal `json:"expectedToAmount"`
	MinimumReceived  decimal.Decimal `json:"minimumReceived"`
	PlatformFee      decimal.Decimal `json:"platformFee"`
	Message          string          `json:"message"`
}
