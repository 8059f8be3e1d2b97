package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMarket struct {
	calls int32
	live  bool
}

func (m *countingMarket) Refresh(_ context.Context) models.MarketStats {
	atomic.AddInt32(&m.calls, 1)
	stats := models.DefaultMarketStats()
	stats.Live = m.live
	return stats
}

func (m *countingMarket) count() int32 {
	return atomic.LoadInt32(&m.calls)
}

func TestNewMarketWorker_Validation(t *testing.T) {
	_, err := NewMarketWorker(&MarketWorkerConfig{})
	assert.Error(t, err)

	_, err = NewMarketWorker(&MarketWorkerConfig{Market: &countingMarket{}, Schedule: "every so often"})
	assert.Error(t, err)

	w, err := NewMarketWorker(&MarketWorkerConfig{Market: &countingMarket{}, Logger: logging.Discard()})
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, w.Stats().Schedule)
	assert.False(t, w.IsRunning())
}

func TestMarketWorker_StartStop(t *testing.T) {
	market := &countingMarket{live: true}
	w, err := NewMarketWorker(&MarketWorkerConfig{
		Market:     market,
		Schedule:   "@every 1s",
		RunOnStart: true,
		Logger:     logging.Discard(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, w.Start(ctx))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(ctx), "double start")

	require.Eventually(t, func() bool { return market.count() >= 2 }, 5*time.Second, 50*time.Millisecond)

	stats := w.Stats()
	assert.True(t, stats.Running)
	assert.True(t, stats.LastLive)
	assert.GreaterOrEqual(t, stats.LiveRuns, int64(2))
	assert.False(t, stats.NextRun.IsZero())

	require.NoError(t, w.Stop(ctx))
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Stop(ctx), "double stop")

	after := market.count()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, market.count(), "no runs after stop")
}

func TestMarketWorker_RunNow(t *testing.T) {
	market := &countingMarket{}
	w, err := NewMarketWorker(&MarketWorkerConfig{Market: market, Logger: logging.Discard()})
	require.NoError(t, err)

	stats := w.RunNow(context.Background())
	assert.False(t, stats.Live)
	assert.Equal(t, int32(1), market.count())
	assert.Equal(t, int64(1), w.Stats().Runs)
	assert.Equal(t, int64(0), w.Stats().LiveRuns)
}
