package service

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinpay/coinpay-api/internal/metrics"
)

// FeeCollection is one platform fee owed from a completed swap submission
type FeeCollection struct {
	SwapID          uuid.UUID
	TokenAddress    string
	Amount          decimal.Decimal
	WalletAddress   string
	TreasuryAddress string
}

// FeeSink settles a collected fee, typically by transferring it to the
// treasury wallet.
type FeeSink interface {
	Collect(ctx context.Context, collection FeeCollection) error
}

// FeeCollector drains fee collection tasks through a bounded queue on a
// single background worker. Enqueueing never blocks swap execution; when
// the queue is full the task is dropped and counted.
type FeeCollector struct {
	queue  chan FeeCollection
	sink   FeeSink
	logger *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewFeeCollector creates a collector with the given queue capacity
func NewFeeCollector(queueSize int, sink FeeSink, logger *zap.Logger) *FeeCollector {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &FeeCollector{
		queue:  make(chan FeeCollection, queueSize),
		sink:   sink,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches the background worker
func (c *FeeCollector) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop signals the worker to finish queued tasks and waits for it
func (c *FeeCollector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// Enqueue queues a fee collection task. Returns false if the queue is full
// and the task was dropped.
func (c *FeeCollector) Enqueue(collection FeeCollection) bool {
	select {
	case c.queue <- collection:
		metrics.FeeQueueDepth.Inc()
		return true
	default:
		metrics.FeeCollectionsTotal.WithLabelValues("dropped").Inc()
		c.logger.Error("fee collection queue full, dropping task",
			zap.String("swap_id", collection.SwapID.String()),
			zap.String("amount", collection.Amount.String()))
		return false
	}
}

func (c *FeeCollector) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopCh:
			// Drain whatever is already queued before exiting
			for {
				select {
				case collection := <-c.queue:
					c.process(collection)
				default:
					return
				}
			}
		case collection := <-c.queue:
			c.process(collection)
		}
	}
}

func (c *FeeCollector) process(collection FeeCollection) {
	metrics.FeeQueueDepth.Dec()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond

	err := backoff.Retry(func() error {
		return c.sink.Collect(ctx, collection)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx))
	if err != nil {
		// Fee collection failures never fail the swap; they are logged
		// and counted for reconciliation.
		metrics.FeeCollectionsTotal.WithLabelValues("failed").Inc()
		c.logger.Error("fee collection failed",
			zap.String("swap_id", collection.SwapID.String()),
			zap.String("token", collection.TokenAddress),
			zap.String("amount", collection.Amount.String()),
			zap.Error(err))
		return
	}

	metrics.FeeCollectionsTotal.WithLabelValues("collected").Inc()
	c.logger.Debug("platform fee collected",
		zap.String("swap_id", collection.SwapID.String()),
		zap.String("amount", collection.Amount.String()))
}

// LogSink records fee transfers for offline settlement instead of moving
// funds. It backs mock mode; a treasury transfer sink replaces it in
// production deployments.
type LogSink struct {
	Logger *zap.Logger
}

// Collect implements FeeSink
func (s LogSink) Collect(_ context.Context, collection FeeCollection) error {
	s.Logger.Info("fee transfer recorded",
		zap.String("swap_id", collection.SwapID.String()),
		zap.String("token", collection.TokenAddress),
		zap.String("amount", collection.Amount.String()),
		zap.String("from", collection.WalletAddress),
		zap.String("treasury", collection.TreasuryAddress))
	return nil
}
