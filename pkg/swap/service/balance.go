package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coinpay/coinpay-api/pkg/swap"
)

// ValidateBalance checks whether a wallet can cover a swap amount plus the
// platform fee, both denominated in the source token.
func (s *Service) ValidateBalance(ctx context.Context, walletAddress, tokenAddress string, amount decimal.Decimal, forceRefresh bool) (*swap.BalanceValidation, error) {
	if !amount.IsPositive() {
		return nil, swap.ErrInvalidAmount
	}

	balance, err := s.balances.Balance(ctx, walletAddress, tokenAddress, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet balance: %w", err)
	}

	fee := s.cfg.Fees.Fee(amount)
	total := amount.Add(fee)

	shortfall := decimal.Zero
	if balance.LessThan(total) {
		shortfall = total.Sub(balance)
	}

	return &swap.BalanceValidation{
		TokenAddress:         tokenAddress,
		CurrentBalance:       balance,
		RequiredAmount:       amount,
		PlatformFee:          fee,
		TotalRequired:        total,
		HasSufficientBalance: shortfall.IsZero(),
		ShortfallAmount:      shortfall,
	}, nil
}
