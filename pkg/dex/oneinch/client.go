// Package oneinch implements the dex.Aggregator interface against the
// 1inch v5.0 aggregation protocol REST API.
package oneinch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/creasty/defaults"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/internal/metrics"
	"github.com/coinpay/coinpay-api/pkg/dex"
	"github.com/coinpay/coinpay-api/pkg/token"
)

// ProviderName is the name this client registers under and records on swaps
const ProviderName = "1inch"

// Options configures the 1inch API client
type Options struct {
	BaseURL          string        `default:"https://api.1inch.io/v5.0"`
	ChainID          int64         `default:"80002"`
	APIKey           string
	Timeout          time.Duration `default:"10s"`
	MaxRetries       uint64        `default:"3"`
	RetryInitialWait time.Duration `default:"2s"`
	MaxConcurrent    int           `default:"10"`
	ReleaseDelay     time.Duration `default:"1s"`
	BreakerFailures  uint32        `default:"5"`
	BreakerCooldown  time.Duration `default:"60s"`
}

// Client talks to the 1inch aggregation API. Outbound calls go through a
// concurrency limiter, a retry loop and a circuit breaker, in that order.
type Client struct {
	opts    Options
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	permits chan struct{}
	logger  *zap.Logger
}

// errRetryable marks transient failures (429, 503, network) for the retry loop
var errRetryable = errors.New("transient aggregator error")

// NewClient creates a 1inch client with the given options, filling in defaults
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, fmt.Errorf("failed to apply client defaults: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        ProviderName,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logger.Warn("aggregator circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		breaker: breaker,
		permits: make(chan struct{}, opts.MaxConcurrent),
		logger:  logger,
	}, nil
}

// Name implements dex.Aggregator
func (c *Client) Name() string { return ProviderName }

// GetQuote implements dex.Aggregator
func (c *Client) GetQuote(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal) (*dex.Quote, error) {
	query := url.Values{}
	query.Set("fromTokenAddress", fromToken)
	query.Set("toTokenAddress", toToken)
	query.Set("amount", toBaseUnits(amount, fromToken))

	var resp quoteResponse
	if err := c.getJSON(ctx, "quote", query, &resp); err != nil {
		return nil, fmt.Errorf("1inch quote request failed: %w", err)
	}

	fromAmount := fromBaseUnits(resp.FromTokenAmount, fromToken)
	toAmount := fromBaseUnits(resp.ToTokenAmount, toToken)

	return &dex.Quote{
		FromToken:    fromToken,
		ToToken:      toToken,
		FromAmount:   fromAmount,
		ToAmount:     toAmount,
		ExchangeRate: exchangeRate(fromAmount, toAmount),
		EstimatedGas: resp.EstimatedGas.String(),
		Provider:     ProviderName,
		QuotedAt:     time.Now().UTC(),
	}, nil
}

// GetSwapTransaction implements dex.Aggregator
func (c *Client) GetSwapTransaction(ctx context.Context, fromToken, toToken string, amount, slippage decimal.Decimal, fromAddress string) (*dex.SwapTransaction, error) {
	query := url.Values{}
	query.Set("fromTokenAddress", fromToken)
	query.Set("toTokenAddress", toToken)
	query.Set("amount", toBaseUnits(amount, fromToken))
	query.Set("fromAddress", fromAddress)
	query.Set("slippage", slippage.StringFixed(1))
	query.Set("disableEstimate", "false")

	var resp swapResponse
	if err := c.getJSON(ctx, "swap", query, &resp); err != nil {
		return nil, fmt.Errorf("1inch swap request failed: %w", err)
	}

	fromAmount := fromBaseUnits(resp.FromTokenAmount, fromToken)
	toAmount := fromBaseUnits(resp.ToTokenAmount, toToken)

	return &dex.SwapTransaction{
		FromToken:      fromToken,
		ToToken:        toToken,
		FromAmountBase: resp.FromTokenAmount,
		ToAmountBase:   resp.ToTokenAmount,
		ExchangeRate:   exchangeRate(fromAmount, toAmount),
		To:             resp.Tx.To,
		Data:           resp.Tx.Data,
		Value:          resp.Tx.Value,
		Gas:            resp.Tx.Gas.String(),
		GasPrice:       resp.Tx.GasPrice,
		SpenderAddress: resp.Tx.To,
	}, nil
}

// EstimateGas implements dex.Aggregator
func (c *Client) EstimateGas(tx *dex.SwapTransaction) decimal.Decimal {
	return dex.GasCost(tx.Gas)
}

// getJSON performs a rate-limited GET with retries and circuit breaking,
// decoding a successful response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}

	requestURL := fmt.Sprintf("%s/%d/%s?%s", c.opts.BaseURL, c.opts.ChainID, endpoint, query.Encode())

	operation := func() error {
		body, err := c.send(ctx, requestURL)
		if err != nil {
			if errors.Is(err, errRetryable) {
				c.logger.Warn("retrying aggregator request",
					zap.String("endpoint", endpoint), zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.RetryInitialWait
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Minute

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.opts.MaxRetries), ctx))
	if err != nil {
		metrics.AggregatorRequests.WithLabelValues(ProviderName, endpoint, "error").Inc()
		return err
	}
	metrics.AggregatorRequests.WithLabelValues(ProviderName, endpoint, "success").Inc()
	return nil
}

// send performs one HTTP attempt through the circuit breaker.
// Network errors and 503 responses count as breaker failures; other HTTP
// error statuses do not trip the breaker.
func (c *Client) send(ctx context.Context, requestURL string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if c.opts.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errRetryable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading body: %v", errRetryable, err)
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("%w: aggregator unavailable (503)", errRetryable)
		}
		return &attemptResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("aggregator circuit open: %w", err)
		}
		return nil, err
	}

	attempt := result.(*attemptResult)
	switch {
	case attempt.status == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limited (429)", errRetryable)
	case attempt.status < 200 || attempt.status >= 300:
		return nil, apiError(attempt.status, attempt.body)
	}
	return attempt.body, nil
}

type attemptResult struct {
	status int
	body   []byte
}

// acquire takes a concurrency permit. Permits are handed back on a delay so
// the client never exceeds MaxConcurrent requests per ReleaseDelay window.
func (c *Client) acquire(ctx context.Context) error {
	select {
	case c.permits <- struct{}{}:
		time.AfterFunc(c.opts.ReleaseDelay, func() { <-c.permits })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func apiError(status int, body []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Description != "" {
		return fmt.Errorf("aggregator returned %d: %s", status, apiErr.Description)
	}
	return fmt.Errorf("aggregator returned %d: %s", status, string(body))
}

func exchangeRate(fromAmount, toAmount decimal.Decimal) decimal.Decimal {
	if !fromAmount.IsPositive() {
		return decimal.Zero
	}
	return toAmount.Div(fromAmount)
}

// toBaseUnits converts a human-unit amount to the token's smallest unit
func toBaseUnits(amount decimal.Decimal, tokenAddress string) string {
	return amount.Shift(int32(token.Decimals(tokenAddress))).StringFixed(0)
}

// fromBaseUnits converts a base-unit string back to human units.
// Unparseable input yields zero.
func fromBaseUnits(baseAmount, tokenAddress string) decimal.Decimal {
	value, err := decimal.NewFromString(baseAmount)
	if err != nil {
		return decimal.Zero
	}
	return value.Shift(-int32(token.Decimals(tokenAddress)))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
