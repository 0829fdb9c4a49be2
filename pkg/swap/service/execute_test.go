package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/dex/fixture"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/token"
	"github.com/coinpay/coinpay-api/pkg/wallet"
)

const testWallet = "0x00000000000000000000000000000000deadbeef"

func executeParams(userID uuid.UUID, amount string) ExecuteParams {
	return ExecuteParams{
		UserID:        userID,
		WalletAddress: testWallet,
		FromToken:     token.USDC,
		ToToken:       token.WETH,
		Amount:        decimal.RequireFromString(amount),
		Slippage:      decimal.NewFromInt(1),
	}
}

func newExecuteService(st *MockStore, balances wallet.BalanceProvider, submitter TransactionSubmitter, collector *FeeCollector) *Service {
	return New(
		Config{
			Fees:            swap.DefaultFeeConfig(),
			QuoteTTL:        30 * time.Second,
			TreasuryAddress: "0xTreasury",
		},
		fixture.New(),
		st,
		balances,
		submitter,
		nil,
		collector,
		zap.NewNop(),
	)
}

func TestExecute_Success(t *testing.T) {
	var created *swap.Transaction
	var hashedID uuid.UUID
	var savedHash string
	st := &MockStore{
		CreateFunc: func(_ context.Context, tx *swap.Transaction) error {
			created = tx
			return nil
		},
		SetTransactionHashFunc: func(_ context.Context, id uuid.UUID, hash string) error {
			hashedID = id
			savedHash = hash
			return nil
		},
	}

	collected := make(chan FeeCollection, 1)
	collector := NewFeeCollector(4, &MockSink{
		CollectFunc: func(_ context.Context, c FeeCollection) error {
			collected <- c
			return nil
		},
	}, zap.NewNop())
	collector.Start()
	defer collector.Stop()

	svc := newExecuteService(st, wallet.NewStaticProvider(), MockSubmitter{}, collector)

	userID := uuid.New()
	result, err := svc.Execute(context.Background(), executeParams(userID, "100"))
	require.NoError(t, err)

	// Pending record persisted with the priced amounts
	require.NotNil(t, created)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, swap.StatusPending, created.Status)
	assert.Equal(t, "USDC", created.FromTokenSymbol)
	assert.Equal(t, "WETH", created.ToTokenSymbol)
	assert.True(t, created.FromAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, created.ToAmount.Equal(decimal.RequireFromString("0.0285")))
	assert.True(t, created.PlatformFee.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, created.MinimumReceived.Equal(decimal.RequireFromString("0.028215")),
		"got %s", created.MinimumReceived)
	assert.Equal(t, "1inch", created.DexProvider)
	require.NotNil(t, created.PriceImpact)
	assert.True(t, created.PriceImpact.IsZero())

	// Hash recorded against the created record
	assert.Equal(t, created.ID, hashedID)
	assert.NotEmpty(t, savedHash)

	// Result mirrors the record
	assert.Equal(t, created.ID, result.SwapID)
	assert.Equal(t, savedHash, result.TransactionHash)
	assert.Equal(t, swap.StatusPending, result.Status)
	assert.True(t, result.ExpectedToAmount.Equal(decimal.RequireFromString("0.0285")))
	assert.True(t, result.PlatformFee.Equal(decimal.RequireFromString("0.5")))

	// Platform fee queued for collection
	select {
	case c := <-collected:
		assert.Equal(t, created.ID, c.SwapID)
		assert.True(t, c.Amount.Equal(decimal.RequireFromString("0.5")))
		assert.Equal(t, token.USDC, c.TokenAddress)
		assert.Equal(t, "0xTreasury", c.TreasuryAddress)
	case <-time.After(2 * time.Second):
		t.Fatal("fee collection was never processed")
	}
}

func TestExecute_InsufficientBalance(t *testing.T) {
	createCalls := 0
	st := &MockStore{
		CreateFunc: func(context.Context, *swap.Transaction) error {
			createCalls++
			return nil
		},
	}

	balances := wallet.NewStaticProvider()
	balances.SetBalance(testWallet, token.USDC, decimal.NewFromInt(50))

	svc := newExecuteService(st, balances, MockSubmitter{}, nil)

	_, err := svc.Execute(context.Background(), executeParams(uuid.New(), "100"))

	var insufficient *swap.InsufficientBalanceError
	require.True(t, errors.As(err, &insufficient))
	// 100 + 0.5% fee
	assert.True(t, insufficient.RequiredAmount.Equal(decimal.RequireFromString("100.5")))
	assert.True(t, insufficient.AvailableAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, insufficient.Shortfall().Equal(decimal.RequireFromString("50.5")))
	assert.Equal(t, 0, createCalls, "no record should be created before the balance check passes")
}

func TestExecute_SubmissionFailureMarksRecordFailed(t *testing.T) {
	var created *swap.Transaction
	var failedID uuid.UUID
	var failedMsg string
	st := &MockStore{
		CreateFunc: func(_ context.Context, tx *swap.Transaction) error {
			created = tx
			return nil
		},
		MarkFailedFunc: func(_ context.Context, id uuid.UUID, msg string) error {
			failedID = id
			failedMsg = msg
			return nil
		},
	}

	submitter := &MockSubmitterFunc{
		SubmitFunc: func(context.Context, *dex.SwapTransaction, string) (string, error) {
			return "", errors.New("nonce too low")
		},
	}

	svc := newExecuteService(st, wallet.NewStaticProvider(), submitter, nil)

	_, err := svc.Execute(context.Background(), executeParams(uuid.New(), "100"))
	require.Error(t, err)

	require.NotNil(t, created)
	assert.Equal(t, created.ID, failedID)
	assert.Contains(t, failedMsg, "nonce too low")
}

func TestExecute_MinimumReceivedUsesQuotedRate(t *testing.T) {
	var created *swap.Transaction
	st := &MockStore{
		CreateFunc: func(_ context.Context, tx *swap.Transaction) error {
			created = tx
			return nil
		},
	}

	// The echoed output (0.028 WETH) is below the quoted rate's 0.0285
	aggregator := &MockAggregator{
		GetSwapTransactionFunc: func(context.Context, string, string, decimal.Decimal, decimal.Decimal, string) (*dex.SwapTransaction, error) {
			return &dex.SwapTransaction{
				FromToken:      token.USDC,
				ToToken:        token.WETH,
				FromAmountBase: "100000000",
				ToAmountBase:   "28000000000000000",
				ExchangeRate:   decimal.RequireFromString("0.000285"),
				Gas:            "150000",
				SpenderAddress: "0xrouter",
			}, nil
		},
	}

	svc := New(
		Config{Fees: swap.DefaultFeeConfig(), TreasuryAddress: "0xTreasury"},
		aggregator,
		st,
		wallet.NewStaticProvider(),
		MockSubmitter{},
		nil,
		nil,
		zap.NewNop(),
	)

	result, err := svc.Execute(context.Background(), executeParams(uuid.New(), "100"))
	require.NoError(t, err)

	// 100 * 0.000285 * 0.99, not the echoed 0.028 * 0.99
	assert.True(t, result.MinimumReceived.Equal(decimal.RequireFromString("0.028215")),
		"got %s", result.MinimumReceived)

	require.NotNil(t, created)
	assert.True(t, created.ToAmount.Equal(decimal.RequireFromString("0.028")))
	assert.True(t, created.MinimumReceived.Equal(decimal.RequireFromString("0.028215")))
	require.NotNil(t, created.PriceImpact)
	assert.True(t, created.PriceImpact.Equal(decimal.RequireFromString("1.75")),
		"got %s", created.PriceImpact)
}

func TestExecute_RejectsSameToken(t *testing.T) {
	aggregatorCalled := false
	svc := New(
		Config{Fees: swap.DefaultFeeConfig()},
		&MockAggregator{
			GetSwapTransactionFunc: func(context.Context, string, string, decimal.Decimal, decimal.Decimal, string) (*dex.SwapTransaction, error) {
				aggregatorCalled = true
				return nil, nil
			},
		},
		&MockStore{},
		wallet.NewStaticProvider(),
		MockSubmitter{},
		nil,
		nil,
		zap.NewNop(),
	)

	params := executeParams(uuid.New(), "100")
	params.ToToken = params.FromToken
	_, err := svc.Execute(context.Background(), params)

	assert.True(t, errors.Is(err, swap.ErrSameToken))
	assert.False(t, aggregatorCalled)
}

func TestExecute_RejectsInvalidSlippage(t *testing.T) {
	svc := newExecuteService(&MockStore{}, wallet.NewStaticProvider(), MockSubmitter{}, nil)

	params := executeParams(uuid.New(), "100")
	params.Slippage = decimal.RequireFromString("0.05")
	_, err := svc.Execute(context.Background(), params)
	assert.True(t, errors.Is(err, swap.ErrInvalidSlippage))
}

func TestExecute_ApprovalCheckerIsCalled(t *testing.T) {
	var mu sync.Mutex
	var approvedSpender string

	svc := New(
		Config{Fees: swap.DefaultFeeConfig(), TreasuryAddress: "0xTreasury"},
		fixture.New(),
		&MockStore{},
		wallet.NewStaticProvider(),
		MockSubmitter{},
		approvalFunc(func(_ context.Context, _, _, spender string, _ decimal.Decimal) error {
			mu.Lock()
			defer mu.Unlock()
			approvedSpender = spender
			return nil
		}),
		nil,
		zap.NewNop(),
	)

	_, err := svc.Execute(context.Background(), executeParams(uuid.New(), "100"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "0x1111111254fb6c44bAC0beD2854e76F90643097d", approvedSpender)
}

type approvalFunc func(ctx context.Context, walletAddress, tokenAddress, spender string, amount decimal.Decimal) error

func (f approvalFunc) EnsureApproval(ctx context.Context, walletAddress, tokenAddress, spender string, amount decimal.Decimal) error {
	return f(ctx, walletAddress, tokenAddress, spender, amount)
}
