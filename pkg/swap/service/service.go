// Package service implements the swap pipeline: quoting, balance
// validation, execution and fee collection.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/swap"
	"github.com/coinpay/coinpay-api/pkg/swap/store"
	"github.com/coinpay/coinpay-api/pkg/token"
	"github.com/coinpay/coinpay-api/pkg/wallet"
)

// TransactionSubmitter signs and broadcasts a prepared swap transaction,
// returning the on-chain transaction hash.
type TransactionSubmitter interface {
	Submit(ctx context.Context, tx *dex.SwapTransaction, fromAddress string) (string, error)
}

// ApprovalChecker ensures the aggregator router may spend the source token
// before the swap is submitted.
type ApprovalChecker interface {
	EnsureApproval(ctx context.Context, walletAddress, tokenAddress, spender string, amount decimal.Decimal) error
}

// Config carries the swap pipeline settings fixed at composition time
type Config struct {
	Fees            swap.FeeConfig
	QuoteTTL        time.Duration
	TreasuryAddress string
}

// Service orchestrates swap quoting and execution against a DEX aggregator
type Service struct {
	cfg        Config
	aggregator dex.Aggregator
	store      store.Store
	balances   wallet.BalanceProvider
	submitter  TransactionSubmitter
	approvals  ApprovalChecker
	collector  *FeeCollector
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a swap service. Collector may be started before or after.
func New(
	cfg Config,
	aggregator dex.Aggregator,
	st store.Store,
	balances wallet.BalanceProvider,
	submitter TransactionSubmitter,
	approvals ApprovalChecker,
	collector *FeeCollector,
	logger *zap.Logger,
) *Service {
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = 30 * time.Second
	}
	if approvals == nil {
		approvals = NoopApprovalChecker{}
	}
	return &Service{
		cfg:        cfg,
		aggregator: aggregator,
		store:      st,
		balances:   balances,
		submitter:  submitter,
		approvals:  approvals,
		collector:  collector,
		logger:     logger,
		now:        time.Now,
	}
}

// validatePair rejects same-token, unsupported and non-positive swaps
func validatePair(fromToken, toToken string, amount decimal.Decimal) error {
	if strings.EqualFold(fromToken, toToken) {
		return swap.ErrSameToken
	}
	if !token.Supported(fromToken) || !token.Supported(toToken) {
		return swap.ErrUnsupportedPair
	}
	if !amount.IsPositive() {
		return swap.ErrInvalidAmount
	}
	return nil
}

// NoopApprovalChecker assumes allowances are managed out of band.
// It is the default until custodial approval submission lands.
type NoopApprovalChecker struct{}

// EnsureApproval implements ApprovalChecker
func (NoopApprovalChecker) EnsureApproval(context.Context, string, string, string, decimal.Decimal) error {
	return nil
}

// MockSubmitter fabricates transaction hashes without touching a chain.
// Used in mock mode and tests.
type MockSubmitter struct{}

// Submit implements TransactionSubmitter
func (MockSubmitter) Submit(_ context.Context, _ *dex.SwapTransaction, _ string) (string, error) {
	raw := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return "0x" + raw, nil
}
