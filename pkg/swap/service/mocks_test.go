package service

// TODO: remove the mock impl and use mockery to generate mock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
)

// MockAggregator is a mock implementation of dex.Aggregator
type MockAggregator struct {
	GetQuoteFunc           func(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal) (*dex.Quote, error)
	GetSwapTransactionFunc func(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal, fromAddress string) (*dex.SwapTransaction, error)
}

func (m *MockAggregator) GetQuote(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal) (*dex.Quote, error) {
	if m.GetQuoteFunc != nil {
		return m.GetQuoteFunc(ctx, fromToken, toToken, amount, slippage)
	}
	return nil, nil
}

func (m *MockAggregator) GetSwapTransaction(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal, fromAddress string) (*dex.SwapTransaction, error) {
	if m.GetSwapTransactionFunc != nil {
		return m.GetSwapTransactionFunc(ctx, fromToken, toToken, amount, slippage, fromAddress)
	}
	return nil, nil
}

func (m *MockAggregator) EstimateGas(tx *dex.SwapTransaction) decimal.Decimal {
	return dex.GasCost(tx.Gas)
}

func (m *MockAggregator) Name() string { return "mock-dex" }

// MockStore is a mock implementation of store.Store
type MockStore struct {
	CreateFunc               func(ctx context.Context, tx *swap.Transaction) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*swap.Transaction, error)
	GetByTransactionHashFunc func(ctx context.Context, hash string) (*swap.Transaction, error)
	ListByUserFunc           func(ctx context.Context, userID uuid.UUID, status *swap.Status, page store.Page) ([]*swap.Transaction, error)
	ListByWalletFunc         func(ctx context.Context, walletAddress string, page store.Page) ([]*swap.Transaction, error)
	UpdateFunc               func(ctx context.Context, tx *swap.Transaction) error
	SetTransactionHashFunc   func(ctx context.Context, id uuid.UUID, hash string) error
	MarkConfirmedFunc        func(ctx context.Context, id uuid.UUID, gasUsed string, gasCost decimal.Decimal) error
	MarkFailedFunc           func(ctx context.Context, id uuid.UUID, errorMessage string) error
	CountByUserFunc          func(ctx context.Context, userID uuid.UUID) (int, error)
	TotalVolumeByUserFunc    func(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

func (m *MockStore) Create(ctx context.Context, tx *swap.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx)
	}
	return nil
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*swap.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) GetByTransactionHash(ctx context.Context, hash string) (*swap.Transaction, error) {
	if m.GetByTransactionHashFunc != nil {
		return m.GetByTransactionHashFunc(ctx, hash)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) ListByUser(ctx context.Context, userID uuid.UUID, status *swap.Status, page store.Page) ([]*swap.Transaction, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, status, page)
	}
	return nil, nil
}

func (m *MockStore) ListByWallet(ctx context.Context, walletAddress string, page store.Page) ([]*swap.Transaction, error) {
	if m.ListByWalletFunc != nil {
		return m.ListByWalletFunc(ctx, walletAddress, page)
	}
	return nil, nil
}

func (m *MockStore) Update(ctx context.Context, tx *swap.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx)
	}
	return nil
}

func (m *MockStore) SetTransactionHash(ctx context.Context, id uuid.UUID, hash string) error {
	if m.SetTransactionHashFunc != nil {
		return m.SetTransactionHashFunc(ctx, id, hash)
	}
	return nil
}

func (m *MockStore) MarkConfirmed(ctx context.Context, id uuid.UUID, gasUsed string, gasCost decimal.Decimal) error {
	if m.MarkConfirmedFunc != nil {
		return m.MarkConfirmedFunc(ctx, id, gasUsed, gasCost)
	}
	return nil
}

func (m *MockStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, errorMessage)
	}
	return nil
}

func (m *MockStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.CountByUserFunc != nil {
		return m.CountByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockStore) TotalVolumeByUser(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if m.TotalVolumeByUserFunc != nil {
		return m.TotalVolumeByUserFunc(ctx, userID)
	}
	return decimal.Zero, nil
}

// MockSubmitterFunc is a mock implementation of TransactionSubmitter
type MockSubmitterFunc struct {
	SubmitFunc func(ctx context.Context, tx *dex.SwapTransaction, fromAddress string) (string, error)
}

func (m *MockSubmitterFunc) Submit(ctx context.Context, tx *dex.SwapTransaction, fromAddress string) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, tx, fromAddress)
	}
	return "0xdeadbeef", nil
}

// MockSink is a mock implementation of FeeSink
type MockSink struct {
	CollectFunc func(ctx context.Context, collection FeeCollection) error
}

func (m *MockSink) Collect(ctx context.Context, collection FeeCollection) error {
	if m.CollectFunc != nil {
		return m.CollectFunc(ctx, collection)
	}
	return nil
}
