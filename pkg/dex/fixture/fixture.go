// Package fixture provides a deterministic in-process dex.Aggregator used in
// mock mode and tests. Quotes are a pure function of their inputs.
package fixture

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/dex/oneinch"
	"github.com/coinpay/coinpay-api/pkg/token"
)

const (
	mockRouterAddress = "0x1111111254fb6c44bAC0beD2854e76F90643097d"
	mockGasEstimate   = "150000"
	mockGasPrice      = "30000000000"
	mockCallData      = "0x12aa3caf0000000000000000000000000000000000000000000000000000000000000000"
)

// pairKey identifies a directed token pair by symbol
type pairKey struct {
	from string
	to   string
}

// Fixed testnet rates. Pairs not listed here trade at 1:1.
var rates = map[pairKey]decimal.Decimal{
	{"USDC", "WETH"}:   decimal.RequireFromString("0.000285"),
	{"WETH", "USDC"}:   decimal.RequireFromString("3500"),
	{"USDC", "WMATIC"}: decimal.RequireFromString("1.25"),
	{"WMATIC", "USDC"}: decimal.RequireFromString("0.80"),
	{"WETH", "WMATIC"}: decimal.RequireFromString("4375"),
	{"WMATIC", "WETH"}: decimal.RequireFromString("0.000228"),
}

// Aggregator serves quotes from the fixed rate table above
type Aggregator struct {
	now func() time.Time
}

// Option customizes a fixture Aggregator
type Option func(*Aggregator)

// WithClock overrides the quote timestamp source
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates a fixture aggregator
func New(opts ...Option) *Aggregator {
	a := &Aggregator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name reports the same provider name as the live client so swap records
// look identical in both modes
func (a *Aggregator) Name() string { return oneinch.ProviderName }

// GetQuote implements dex.Aggregator
func (a *Aggregator) GetQuote(_ context.Context, fromToken, toToken string, amount, _ decimal.Decimal) (*dex.Quote, error) {
	rate := Rate(fromToken, toToken)
	return &dex.Quote{
		FromToken:    fromToken,
		ToToken:      toToken,
		FromAmount:   amount,
		ToAmount:     amount.Mul(rate),
		ExchangeRate: rate,
		EstimatedGas: mockGasEstimate,
		Provider:     oneinch.ProviderName,
		QuotedAt:     a.now().UTC(),
	}, nil
}

// GetSwapTransaction implements dex.Aggregator
func (a *Aggregator) GetSwapTransaction(_ context.Context, fromToken, toToken string, amount, _ decimal.Decimal, fromAddress string) (*dex.SwapTransaction, error) {
	rate := Rate(fromToken, toToken)
	toAmount := amount.Mul(rate)
	return &dex.SwapTransaction{
		FromToken:      fromToken,
		ToToken:        toToken,
		FromAmountBase: toBaseUnits(amount, fromToken),
		ToAmountBase:   toBaseUnits(toAmount, toToken),
		ExchangeRate:   rate,
		To:             mockRouterAddress,
		Data:           mockCallData,
		Value:          "0",
		Gas:            mockGasEstimate,
		GasPrice:       mockGasPrice,
		SpenderAddress: mockRouterAddress,
	}, nil
}

// EstimateGas implements dex.Aggregator
func (a *Aggregator) EstimateGas(tx *dex.SwapTransaction) decimal.Decimal {
	return dex.GasCost(tx.Gas)
}

// Rate returns the fixed exchange rate for a token pair, 1 when unknown
func Rate(fromToken, toToken string) decimal.Decimal {
	key := pairKey{from: token.Symbol(fromToken), to: token.Symbol(toToken)}
	if rate, ok := rates[key]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

func toBaseUnits(amount decimal.Decimal, tokenAddress string) string {
	return amount.Shift(int32(token.Decimals(tokenAddress))).StringFixed(0)
}
