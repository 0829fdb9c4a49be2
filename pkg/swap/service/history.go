package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
)

// SwapByID fetches a single swap, scoped to its owner. Lookups of another
// user's swap report not found rather than forbidden.
func (s *Service) SwapByID(ctx context.Context, userID, swapID uuid.UUID) (*swap.Transaction, error) {
	record, err := s.store.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, store.ErrNotFound
	}
	return record, nil
}

// History lists a user's swaps, newest first, optionally filtered by status
func (s *Service) History(ctx context.Context, userID uuid.UUID, status *swap.Status, page store.Page) ([]*swap.Transaction, error) {
	if status != nil {
		switch *status {
		case swap.StatusPending, swap.StatusConfirmed, swap.StatusFailed:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", errInvalidStatus, *status)
		}
	}
	return s.store.ListByUser(ctx, userID, status, page)
}

// WalletHistory lists swaps executed from a wallet, regardless of user
func (s *Service) WalletHistory(ctx context.Context, walletAddress string, page store.Page) ([]*swap.Transaction, error) {
	return s.store.ListByWallet(ctx, walletAddress, page)
}

// Stats summarizes a user's swap activity
type Stats struct {
	TotalSwaps  int             `json:"totalSwaps"`
	TotalVolume decimal.Decimal `json:"totalVolume"`
}

// UserStats returns swap count and total source-token volume for a user
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	count, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	volume, err := s.store.TotalVolumeByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalSwaps: count, TotalVolume: volume}, nil
}

var errInvalidStatus = errors.New("invalid swap status filter")
