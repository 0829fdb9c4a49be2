// Package evm implements wallet.BalanceProvider against a JSON-RPC node.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/pkg/token"
)

const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

// cacheTTL bounds how stale a cached balance may get before a fresh
// on-chain read is forced
const cacheTTL = 30 * time.Second

type cachedBalance struct {
	amount  decimal.Decimal
	fetched time.Time
}

// Provider reads ERC-20 and native balances over JSON-RPC, with a short
// per-wallet cache that forceRefresh bypasses.
type Provider struct {
	client      *ethclient.Client
	erc20       abi.ABI
	callTimeout time.Duration
	logger      *zap.Logger

	mu    sync.RWMutex
	cache map[string]cachedBalance
}

// NewProvider dials the RPC endpoint and prepares the ERC-20 ABI
func NewProvider(rpcURL string, callTimeout time.Duration, logger *zap.Logger) (*Provider, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC node: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Provider{
		client:      client,
		erc20:       parsed,
		callTimeout: callTimeout,
		logger:      logger,
		cache:       make(map[string]cachedBalance),
	}, nil
}

// Balance implements wallet.BalanceProvider
func (p *Provider) Balance(ctx context.Context, walletAddress, tokenAddress string, forceRefresh bool) (decimal.Decimal, error) {
	key := strings.ToLower(walletAddress) + "/" + strings.ToLower(tokenAddress)

	if !forceRefresh {
		p.mu.RLock()
		entry, ok := p.cache[key]
		p.mu.RUnlock()
		if ok && time.Since(entry.fetched) < cacheTTL {
			return entry.amount, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	var raw *big.Int
	var err error
	if strings.EqualFold(tokenAddress, token.NativeMATIC) {
		raw, err = p.client.BalanceAt(ctx, common.HexToAddress(walletAddress), nil)
	} else {
		raw, err = p.erc20Balance(ctx, walletAddress, tokenAddress)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance lookup for %s failed: %w", tokenAddress, err)
	}

	amount := decimal.NewFromBigInt(raw, -int32(token.Decimals(tokenAddress)))

	p.mu.Lock()
	p.cache[key] = cachedBalance{amount: amount, fetched: time.Now()}
	p.mu.Unlock()

	p.logger.Debug("fetched wallet balance",
		zap.String("wallet", walletAddress),
		zap.String("token", tokenAddress),
		zap.String("balance", amount.String()))
	return amount, nil
}

func (p *Provider) erc20Balance(ctx context.Context, walletAddress, tokenAddress string) (*big.Int, error) {
	calldata, err := p.erc20.Pack("balanceOf", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	contract := common.HexToAddress(tokenAddress)
	result, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: calldata}, nil)
	if err != nil {
		return nil, err
	}

	values, err := p.erc20.Unpack("balanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf return type %T", values[0])
	}
	return balance, nil
}

// Close releases the underlying RPC connection
func (p *Provider) Close() {
	p.client.Close()
}
