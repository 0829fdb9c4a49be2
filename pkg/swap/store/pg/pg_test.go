package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	mghelper "github.com/coinpay/coinpay-api/pkg/pgutil/migrations"

	"github.com/coinpay/coinpay-api/pkg/pgutil"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
	"github.com/coinpay/coinpay-api/pkg/token"
)

func setupStore(t *testing.T) (store.Store, *bun.DB, func()) {
	t.Helper()
	db, cleanup := pgutil.SetupTestDB(t)

	err := mghelper.CreateSchema(context.Background(), db, &SwapDao{})
	if err != nil {
		cleanup()
		t.Fatalf("failed to create swap_transactions table: %v", err)
	}

	return NewStore(db), db, cleanup
}

func newTestSwap(userID uuid.UUID) *swap.Transaction {
	return &swap.Transaction{
		ID:                    uuid.New(),
		UserID:                userID,
		WalletAddress:         "0xAbC1230000000000000000000000000000000001",
		FromToken:             token.USDC,
		ToToken:               token.WETH,
		FromTokenSymbol:       "USDC",
		ToTokenSymbol:         "WETH",
		FromAmount:            decimal.NewFromInt(100),
		ToAmount:              decimal.RequireFromString("0.0285"),
		ExchangeRate:          decimal.RequireFromString("0.000285"),
		PlatformFee:           decimal.RequireFromString("0.5"),
		PlatformFeePercentage: decimal.RequireFromString("0.5"),
		SlippageTolerance:     decimal.NewFromInt(1),
		MinimumReceived:       decimal.RequireFromString("0.028215"),
		DexProvider:           "1inch",
		Status:                swap.StatusPending,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	tx := newTestSwap(uuid.New())
	require.NoError(t, s.Create(ctx, tx))

	got, err := s.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.Equal(t, tx.UserID, got.UserID)
	assert.Equal(t, swap.StatusPending, got.Status)
	assert.True(t, got.FromAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, got.MinimumReceived.Equal(decimal.RequireFromString("0.028215")))
	assert.Nil(t, got.TransactionHash)
	assert.Nil(t, got.ConfirmedAt)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetByID_NotFound(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_SetTransactionHashAndGetByHash(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	tx := newTestSwap(uuid.New())
	require.NoError(t, s.Create(ctx, tx))

	hash := "0x" + uuid.NewString()
	require.NoError(t, s.SetTransactionHash(ctx, tx.ID, hash))

	got, err := s.GetByTransactionHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	require.NotNil(t, got.TransactionHash)
	assert.Equal(t, hash, *got.TransactionHash)
}

func TestStore_MarkConfirmed(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	tx := newTestSwap(uuid.New())
	require.NoError(t, s.Create(ctx, tx))

	gasCost := decimal.RequireFromString("0.0045")
	require.NoError(t, s.MarkConfirmed(ctx, tx.ID, "150000", gasCost))

	got, err := s.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusConfirmed, got.Status)
	require.NotNil(t, got.GasUsed)
	assert.Equal(t, "150000", *got.GasUsed)
	require.NotNil(t, got.GasCost)
	assert.True(t, got.GasCost.Equal(gasCost))
	assert.NotNil(t, got.ConfirmedAt)
}

func TestStore_MarkFailed_ThenConfirmRejected(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	tx := newTestSwap(uuid.New())
	require.NoError(t, s.Create(ctx, tx))

	require.NoError(t, s.MarkFailed(ctx, tx.ID, "submission reverted"))

	got, err := s.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "submission reverted", *got.ErrorMessage)

	// Terminal records reject further transitions
	err = s.MarkConfirmed(ctx, tx.ID, "150000", decimal.Zero)
	assert.True(t, errors.Is(err, store.ErrTerminalState))

	err = s.MarkFailed(ctx, tx.ID, "again")
	assert.True(t, errors.Is(err, store.ErrTerminalState))
}

func TestStore_MarkConfirmed_MissingRecord(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()

	err := s.MarkConfirmed(context.Background(), uuid.New(), "150000", decimal.Zero)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestStore_ListByUser_PaginationAndStatusFilter(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		tx := newTestSwap(userID)
		require.NoError(t, s.Create(ctx, tx))
		if i < 2 {
			require.NoError(t, s.MarkFailed(ctx, tx.ID, "boom"))
		}
	}
	// Another user's swap must not leak in
	require.NoError(t, s.Create(ctx, newTestSwap(uuid.New())))

	all, err := s.ListByUser(ctx, userID, nil, store.Page{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rest, err := s.ListByUser(ctx, userID, nil, store.Page{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	failed := swap.StatusFailed
	onlyFailed, err := s.ListByUser(ctx, userID, &failed, store.Page{})
	require.NoError(t, err)
	assert.Len(t, onlyFailed, 2)
	for _, tx := range onlyFailed {
		assert.Equal(t, swap.StatusFailed, tx.Status)
	}
}

func TestStore_ListByWallet_CaseInsensitive(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	tx := newTestSwap(uuid.New())
	require.NoError(t, s.Create(ctx, tx))

	swaps, err := s.ListByWallet(ctx, "0xABC1230000000000000000000000000000000001", store.Page{})
	require.NoError(t, err)
	assert.Len(t, swaps, 1)
}

func TestStore_CountAndVolumeByUser(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, newTestSwap(userID)))
	}

	count, err := s.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	volume, err := s.TotalVolumeByUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, volume.Equal(decimal.NewFromInt(300)), "got %s", volume)
}

func TestStore_TotalVolumeByUser_NoSwaps(t *testing.T) {
	s, _, cleanup := setupStore(t)
	defer cleanup()

	volume, err := s.TotalVolumeByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, volume.IsZero())
}
