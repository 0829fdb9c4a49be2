package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/internal/metrics"
	apperrors "github.com/coinpay/coinpay-api/pkg/app/errors"
	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/token"
)

// gasCostScale is the precision native gas costs are rounded to
const gasCostScale = 6

// priceImpactWarnThreshold is the impact percentage above which quotes are logged
var priceImpactWarnThreshold = decimal.NewFromInt(1)

// GetQuote fetches and prices a swap quote, including platform fee, gas
// estimate and worst-case received amount. The returned ValidUntil is
// advisory; execution always re-quotes.
func (s *Service) GetQuote(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal) (*swap.QuoteResult, error) {
	timer := prometheus.NewTimer(metrics.QuoteDuration)
	defer timer.ObserveDuration()

	if err := validatePair(fromToken, toToken, amount); err != nil {
		return nil, err
	}
	if err := swap.ValidateSlippage(slippage); err != nil {
		return nil, err
	}

	quote, err := s.aggregator.GetQuote(ctx, fromToken, toToken, amount, slippage)
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to fetch quote from aggregator")
	}

	fee := s.cfg.Fees.Fee(amount)
	gasCost := dex.GasCost(quote.EstimatedGas).Round(gasCostScale)

	minReceived, err := swap.CalculateMinimumReceived(quote.ToAmount, slippage)
	if err != nil {
		return nil, fmt.Errorf("quote for %s/%s is unusable: %w", fromToken, toToken, err)
	}

	expected := amount.Mul(quote.ExchangeRate)
	impact := swap.CalculatePriceImpact(expected, quote.ToAmount)
	if impact.GreaterThan(priceImpactWarnThreshold) {
		s.logger.Warn("quote has high price impact",
			zap.String("from_token", fromToken),
			zap.String("to_token", toToken),
			zap.String("amount", amount.String()),
			zap.String("price_impact", impact.String()))
	}

	return &swap.QuoteResult{
		FromToken:             fromToken,
		FromTokenSymbol:       token.Symbol(fromToken),
		ToToken:               toToken,
		ToTokenSymbol:         token.Symbol(toToken),
		FromAmount:            amount,
		ToAmount:              quote.ToAmount,
		ExchangeRate:          quote.ExchangeRate,
		PlatformFee:           fee,
		PlatformFeePercentage: s.cfg.Fees.Percentage,
		EstimatedGas:          quote.EstimatedGas,
		EstimatedGasCost:      gasCost,
		PriceImpact:           impact,
		SlippageTolerance:     slippage,
		MinimumReceived:       minReceived,
		ValidUntil:            s.now().UTC().Add(s.cfg.QuoteTTL),
		Provider:              quote.Provider,
	}, nil
}

// RecommendSlippage suggests a slippage tolerance for the given trade value
func (s *Service) RecommendSlippage(amount decimal.Decimal) (swap.SlippageRecommendation, error) {
	if !amount.IsPositive() {
		return swap.SlippageRecommendation{}, swap.ErrInvalidAmount
	}
	return swap.RecommendSlippage(amount), nil
}

// FeeBreakdown itemizes the fees charged on a swap of the given amount
func (s *Service) FeeBreakdown(amount decimal.Decimal, fromToken string) (swap.FeeBreakdown, error) {
	if !amount.IsPositive() {
		return swap.FeeBreakdown{}, swap.ErrInvalidAmount
	}
	return s.cfg.Fees.Breakdown(amount, token.Symbol(fromToken)), nil
}
