package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/internal/metrics"
	apperrors "github.com/coinpay/coinpay-api/pkg/app/errors"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/token"
)

// ExecuteParams carries everything needed to run a swap for a user
type ExecuteParams struct {
	UserID        uuid.UUID
	WalletAddress string
	FromToken     string
	ToToken       string
	Amount        decimal.Decimal
	Slippage      decimal.Decimal
}

// Execute runs the full swap pipeline: validate, check balance, fetch the
// transaction from the aggregator, persist a pending record, submit, and
// queue the platform fee for collection.
//
// The balance check is advisory. Funds can move between the check and the
// on-chain submission; in that case the submission fails and the record is
// marked failed.
func (s *Service) Execute(ctx context.Context, params ExecuteParams) (*swap.ExecutionResult, error) {
	if err := validatePair(params.FromToken, params.ToToken, params.Amount); err != nil {
		return nil, err
	}
	if err := swap.ValidateSlippage(params.Slippage); err != nil {
		return nil, err
	}
	if swap.IsSlippageExcessive(params.Slippage) {
		s.logger.Warn("executing swap with excessive slippage tolerance",
			zap.String("wallet", params.WalletAddress),
			zap.String("slippage", params.Slippage.String()))
	}

	validation, err := s.ValidateBalance(ctx, params.WalletAddress, params.FromToken, params.Amount, true)
	if err != nil {
		return nil, err
	}
	if !validation.HasSufficientBalance {
		return nil, &swap.InsufficientBalanceError{
			RequiredAmount:  validation.TotalRequired,
			AvailableAmount: validation.CurrentBalance,
		}
	}

	swapTx, err := s.aggregator.GetSwapTransaction(ctx,
		params.FromToken, params.ToToken, params.Amount, params.Slippage, params.WalletAddress)
	if err != nil {
		metrics.SwapsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.DependencyError(err, "failed to fetch swap transaction from aggregator")
	}

	actualTo := fromBaseUnits(swapTx.ToAmountBase, params.ToToken)
	expectedTo := params.Amount.Mul(swapTx.ExchangeRate)

	// Worst case is derived from the quoted rate, not the echoed output
	minReceived, err := swap.CalculateMinimumReceived(expectedTo, params.Slippage)
	if err != nil {
		return nil, fmt.Errorf("aggregator returned unusable exchange rate: %w", err)
	}

	impact := swap.CalculatePriceImpact(expectedTo, actualTo)
	if impact.GreaterThan(priceImpactWarnThreshold) {
		s.logger.Warn("swap has high price impact",
			zap.String("wallet", params.WalletAddress),
			zap.String("price_impact", impact.String()))
	}

	if err := s.approvals.EnsureApproval(ctx,
		params.WalletAddress, params.FromToken, swapTx.SpenderAddress, params.Amount); err != nil {
		return nil, fmt.Errorf("token approval failed: %w", err)
	}

	record := &swap.Transaction{
		ID:                    uuid.New(),
		UserID:                params.UserID,
		WalletAddress:         params.WalletAddress,
		FromToken:             params.FromToken,
		ToToken:               params.ToToken,
		FromTokenSymbol:       token.Symbol(params.FromToken),
		ToTokenSymbol:         token.Symbol(params.ToToken),
		FromAmount:            params.Amount,
		ToAmount:              actualTo,
		ExchangeRate:          swapTx.ExchangeRate,
		PlatformFee:           validation.PlatformFee,
		PlatformFeePercentage: s.cfg.Fees.Percentage,
		SlippageTolerance:     params.Slippage,
		PriceImpact:           &impact,
		MinimumReceived:       minReceived,
		DexProvider:           s.aggregator.Name(),
		Status:                swap.StatusPending,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist swap record: %w", err)
	}

	txHash, err := s.submitter.Submit(ctx, swapTx, params.WalletAddress)
	if err != nil {
		if markErr := s.store.MarkFailed(ctx, record.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark swap record failed",
				zap.String("swap_id", record.ID.String()), zap.Error(markErr))
		}
		metrics.SwapsTotal.WithLabelValues("failed").Inc()
		return nil, apperrors.DependencyError(err, "swap submission failed")
	}

	if err := s.store.SetTransactionHash(ctx, record.ID, txHash); err != nil {
		// The swap is on chain at this point. Keep going, but loudly.
		s.logger.Error("failed to record transaction hash",
			zap.String("swap_id", record.ID.String()),
			zap.String("tx_hash", txHash),
			zap.Error(err))
	}

	if s.collector != nil {
		s.collector.Enqueue(FeeCollection{
			SwapID:          record.ID,
			TokenAddress:    params.FromToken,
			Amount:          validation.PlatformFee,
			WalletAddress:   params.WalletAddress,
			TreasuryAddress: s.cfg.TreasuryAddress,
		})
	}

	metrics.SwapsTotal.WithLabelValues("submitted").Inc()
	metrics.SwapAmount.WithLabelValues(record.FromTokenSymbol, record.ToTokenSymbol).
		Observe(params.Amount.InexactFloat64())

	s.logger.Info("swap submitted",
		zap.String("swap_id", record.ID.String()),
		zap.String("tx_hash", txHash),
		zap.String("wallet", params.WalletAddress),
		zap.String("pair", record.FromTokenSymbol+"/"+record.ToTokenSymbol),
		zap.String("amount", params.Amount.String()))

	return &swap.ExecutionResult{
		SwapID:           record.ID,
		TransactionHash:  txHash,
		Status:           swap.StatusPending,
		ExpectedToAmount: actualTo,
		MinimumReceived:  minReceived,
		PlatformFee:      validation.PlatformFee,
		Message:          "swap submitted, awaiting confirmation",
	}, nil
}

// fromBaseUnits converts a base-unit string to human units, zero on garbage
func fromBaseUnits(baseAmount, tokenAddress string) decimal.Decimal {
	value, err := decimal.NewFromString(baseAmount)
	if err != nil {
		return decimal.Zero
	}
	return value.Shift(-int32(token.Decimals(tokenAddress)))
}
