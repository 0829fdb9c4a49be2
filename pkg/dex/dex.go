// Package dex defines the DEX aggregator abstraction used by the swap pipeline.
package dex

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single aggregator price quote. Amounts are in human units.
type Quote struct {
	FromToken    string
	ToToken      string
	FromAmount   decimal.Decimal
	ToAmount     decimal.Decimal
	ExchangeRate decimal.Decimal
	EstimatedGas string
	Provider     string
	QuotedAt     time.Time
}

// SwapTransaction is the raw transaction data returned by an aggregator,
// ready to be signed and submitted. Token amounts are in base units.
type SwapTransaction struct {
	FromToken      string
	ToToken        string
	FromAmountBase string
	ToAmountBase   string
	ExchangeRate   decimal.Decimal
	To             string
	Data           string
	Value          string
	Gas            string
	GasPrice       string
	SpenderAddress string
}

// Aggregator wraps a DEX aggregator's quote and swap endpoints
type Aggregator interface {
	// GetQuote fetches a price quote for swapping amount of fromToken into toToken
	GetQuote(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal) (*Quote, error)

	// GetSwapTransaction fetches raw transaction data for executing the swap from fromAddress
	GetSwapTransaction(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal, fromAddress string) (*SwapTransaction, error)

	// EstimateGas estimates the native-currency cost of the transaction
	EstimateGas(tx *SwapTransaction) decimal.Decimal

	// Name returns the provider name recorded on swap transactions
	Name() string
}

// typicalGasPriceGwei is the flat gas price heuristic for Polygon
var typicalGasPriceGwei = decimal.NewFromInt(30)

var gweiPerNative = decimal.NewFromInt(1_000_000_000)

// fallbackGasCost is used when the aggregator's gas estimate is unparseable
var fallbackGasCost = decimal.RequireFromString("0.01")

// GasCost converts a gas-unit estimate into a native-currency cost using the
// flat 30 gwei heuristic. Returns 0.01 when gasUnits is not a number.
func GasCost(gasUnits string) decimal.Decimal {
	units, err := decimal.NewFromString(gasUnits)
	if err != nil {
		return fallbackGasCost
	}
	return units.Mul(typicalGasPriceGwei).Div(gweiPerNative)
}
