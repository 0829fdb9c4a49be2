// Package store defines the persistence interface for swap transactions.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinpay/coinpay-api/pkg/swap"
)

// ErrNotFound is returned when a swap lookup finds no matching record.
var ErrNotFound = errors.New("swap transaction not found")

// ErrTerminalState is returned when a status update targets a record that
// is already confirmed or failed.
var ErrTerminalState = errors.New("swap transaction is in a terminal state")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page bounds a list query
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Store defines the interface for swap transaction persistence.
// Records are append-then-update; nothing is ever deleted.
type Store interface {
	Create(ctx context.Context, tx *swap.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*swap.Transaction, error)
	GetByTransactionHash(ctx context.Context, hash string) (*swap.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status *swap.Status, page Page) ([]*swap.Transaction, error)
	ListByWallet(ctx context.Context, walletAddress string, page Page) ([]*swap.Transaction, error)
	Update(ctx context.Context, tx *swap.Transaction) error
	SetTransactionHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, gasUsed string, gasCost decimal.Decimal) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	TotalVolumeByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}
