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
)

func feeCollection() FeeCollection {
	return FeeCollection{
		SwapID:          uuid.New(),
		TokenAddress:    "0x41e94eb019c0762f9bfcf9fb1e58725bfb0e7582",
		Amount:          decimal.RequireFromString("0.5"),
		WalletAddress:   "0x00000000000000000000000000000000deadbeef",
		TreasuryAddress: "0xTreasury",
	}
}

func TestFeeCollector_DeliversToSink(t *testing.T) {
	received := make(chan FeeCollection, 1)
	collector := NewFeeCollector(4, &MockSink{
		CollectFunc: func(_ context.Context, c FeeCollection) error {
			received <- c
			return nil
		},
	}, zap.NewNop())
	collector.Start()
	defer collector.Stop()

	queued := feeCollection()
	require.True(t, collector.Enqueue(queued))

	select {
	case got := <-received:
		assert.Equal(t, queued.SwapID, got.SwapID)
		assert.True(t, got.Amount.Equal(queued.Amount))
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the collection")
	}
}

func TestFeeCollector_RetriesTransientSinkFailures(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	done := make(chan struct{})
	collector := NewFeeCollector(4, &MockSink{
		CollectFunc: func(context.Context, FeeCollection) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls < 3 {
				return errors.New("treasury transfer timed out")
			}
			close(done)
			return nil
		},
	}, zap.NewNop())
	collector.Start()
	defer collector.Stop()

	require.True(t, collector.Enqueue(feeCollection()))

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("collection never succeeded")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls)
}

func TestFeeCollector_EnqueueDropsWhenQueueFull(t *testing.T) {
	// Worker not started, so the first task stays queued
	collector := NewFeeCollector(1, &MockSink{}, zap.NewNop())

	assert.True(t, collector.Enqueue(feeCollection()))
	assert.False(t, collector.Enqueue(feeCollection()))
}

func TestFeeCollector_StopDrainsQueuedTasks(t *testing.T) {
	var mu sync.Mutex
	processed := 0
	collector := NewFeeCollector(8, &MockSink{
		CollectFunc: func(context.Context, FeeCollection) error {
			mu.Lock()
			defer mu.Unlock()
			processed++
			return nil
		},
	}, zap.NewNop())

	for i := 0; i < 5; i++ {
		require.True(t, collector.Enqueue(feeCollection()))
	}

	collector.Start()
	collector.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, processed)
}
