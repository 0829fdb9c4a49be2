// Package pg is the PostgreSQL implementation of the swap store.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the swap store
func NewStore(db *bun.DB) store.Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, tx *swap.Transaction) error {
	dao := toSwapDao(tx)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create swap transaction: %w", err)
	}
	return nil
}

func (s *pgStore) GetByID(ctx context.Context, id uuid.UUID) (*swap.Transaction, error) {
	dao := new(SwapDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get swap transaction: %w", err)
	}
	return toSwap(dao), nil
}

func (s *pgStore) GetByTransactionHash(ctx context.Context, hash string) (*swap.Transaction, error) {
	dao := new(SwapDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("transaction_hash = ?", hash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get swap transaction by hash: %w", err)
	}
	return toSwap(dao), nil
}

func (s *pgStore) ListByUser(ctx context.Context, userID uuid.UUID, status *swap.Status, page store.Page) ([]*swap.Transaction, error) {
	page = page.Normalize()

	var daos []SwapDao
	query := s.db.NewSelect().
		Model(&daos).
		Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap transactions for user: %w", err)
	}
	return toSwaps(daos), nil
}

func (s *pgStore) ListByWallet(ctx context.Context, walletAddress string, page store.Page) ([]*swap.Transaction, error) {
	page = page.Normalize()

	var daos []SwapDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("LOWER(wallet_address) = LOWER(?)", walletAddress).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list swap transactions for wallet: %w", err)
	}
	return toSwaps(daos), nil
}

func (s *pgStore) Update(ctx context.Context, tx *swap.Transaction) error {
	dao := toSwapDao(tx)
	dao.UpdatedAt = time.Now().UTC()

	res, err := s.db.NewUpdate().
		Model(dao).
		WherePK().
		ExcludeColumn("created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update swap transaction: %w", err)
	}
	return checkAffected(res, nil)
}

func (s *pgStore) SetTransactionHash(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := s.db.NewUpdate().
		Model((*SwapDao)(nil)).
		Set("transaction_hash = ?", hash).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set transaction hash: %w", err)
	}
	return checkAffected(res, nil)
}

func (s *pgStore) MarkConfirmed(ctx context.Context, id uuid.UUID, gasUsed string, gasCost decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*SwapDao)(nil)).
		Set("status = ?", string(swap.StatusConfirmed)).
		Set("gas_used = ?", gasUsed).
		Set("gas_cost = ?", gasCost).
		Set("confirmed_at = NOW()").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(swap.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark swap confirmed: %w", err)
	}
	return checkAffected(res, func() error { return s.classifyMiss(ctx, id) })
}

func (s *pgStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	res, err := s.db.NewUpdate().
		Model((*SwapDao)(nil)).
		Set("status = ?", string(swap.StatusFailed)).
		Set("error_message = ?", errorMessage).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(swap.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark swap failed: %w", err)
	}
	return checkAffected(res, func() error { return s.classifyMiss(ctx, id) })
}

func (s *pgStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.db.NewSelect().
		Model((*SwapDao)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count swap transactions: %w", err)
	}
	return count, nil
}

func (s *pgStore) TotalVolumeByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.NewSelect().
		Model((*SwapDao)(nil)).
		ColumnExpr("COALESCE(SUM(from_amount), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to total swap volume: %w", err)
	}
	return total, nil
}

// classifyMiss distinguishes a guarded update that matched no rows: the
// record is either missing or already terminal.
func (s *pgStore) classifyMiss(ctx context.Context, id uuid.UUID) error {
	exists, err := s.db.NewSelect().
		Model((*SwapDao)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check swap transaction exists: %w", err)
	}
	if exists {
		return store.ErrTerminalState
	}
	return store.ErrNotFound
}

func checkAffected(res sql.Result, onMiss func() error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		if onMiss != nil {
			return onMiss()
		}
		return store.ErrNotFound
	}
	return nil
}

func toSwaps(daos []SwapDao) []*swap.Transaction {
	swaps := make([]*swap.Transaction, len(daos))
	for i := range daos {
		swaps[i] = toSwap(&daos[i])
	}
	return swaps
}
