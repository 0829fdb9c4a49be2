// Package wallet abstracts wallet token balance lookups.
package wallet

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// BalanceProvider reports a wallet's balance of a token in human units.
// forceRefresh bypasses any provider-side caching.
type BalanceProvider interface {
	Balance(ctx context.Context, walletAddress, tokenAddress string, forceRefresh bool) (decimal.Decimal, error)
}

// StaticProvider serves balances from an in-memory table. It backs mock mode
// and tests; wallets without an explicit entry hold the default balance of
// every token.
type StaticProvider struct {
	mu             sync.RWMutex
	balances       map[string]decimal.Decimal
	defaultBalance decimal.Decimal
}

// NewStaticProvider creates a static provider with a 1000-unit default balance
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		balances:       make(map[string]decimal.Decimal),
		defaultBalance: decimal.NewFromInt(1000),
	}
}

// SetBalance pins a wallet's balance of a token
func (p *StaticProvider) SetBalance(walletAddress, tokenAddress string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[balanceKey(walletAddress, tokenAddress)] = amount
}

// Balance implements BalanceProvider
func (p *StaticProvider) Balance(_ context.Context, walletAddress, tokenAddress string, _ bool) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if balance, ok := p.balances[balanceKey(walletAddress, tokenAddress)]; ok {
		return balance, nil
	}
	return p.defaultBalance, nil
}

func balanceKey(walletAddress, tokenAddress string) string {
	return strings.ToLower(walletAddress) + "/" + strings.ToLower(tokenAddress)
}
