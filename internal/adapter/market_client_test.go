package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecosystem-hub/internal/config"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullCoinDocument = `{
  "id": "injective-protocol",
  "market_data": {
    "current_price": {"usd": 31.2},
    "price_change_percentage_24h": -2.5,
    "market_cap": {"usd": 3000000000},
    "total_supply": 100000000,
    "circulating_supply": 97000000,
    "total_volume": {"usd": 200000000}
  }
}`

func newTestClient(url string) *MarketClient {
	return NewMarketClient(&config.MarketConfig{
		URL:               url,
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		RetryAttempts:     2,
	}, logging.Discard())
}

func TestMarketClient_FetchStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fullCoinDocument))
	}))
	defer server.Close()

	stats := newTestClient(server.URL).FetchStats(context.Background())

	assert.True(t, stats.Live)
	assert.Equal(t, 31.2, stats.Price)
	assert.Equal(t, -2.5, stats.PriceChange24h)
	assert.Equal(t, 3e9, stats.MarketCap)
	assert.Equal(t, 1e8, stats.TotalSupply)
	assert.Equal(t, 9.7e7, stats.CirculatingSupply)
	assert.Equal(t, 6.2e6, stats.BurnedSupply)
	assert.Equal(t, 2e8, stats.Volume24h)
	assert.False(t, stats.UpdatedAt.IsZero())
}

func TestMarketClient_PartialDocumentUsesDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"market_data":{"current_price":{"usd":0},"market_cap":{"usd":"n/a"},"total_supply":123}}`))
	}))
	defer server.Close()

	stats := newTestClient(server.URL).FetchStats(context.Background())
	defaults := models.DefaultMarketStats()

	assert.Equal(t, defaults.Price, stats.Price, "zero falls back")
	assert.Equal(t, defaults.MarketCap, stats.MarketCap, "non-numeric falls back")
	assert.Equal(t, 123.0, stats.TotalSupply)
	assert.Equal(t, defaults.Volume24h, stats.Volume24h)
	assert.Equal(t, defaults.BurnedSupply, stats.BurnedSupply)
}

func TestMarketClient_FailureReturnsDefaults(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		calls   int32
	}{
		{
			name: "server error is retried",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			calls: 2,
		},
		{
			name: "client error is not retried",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			calls: 1,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>rate limited</html>`))
			},
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			stats := client.FetchStats(context.Background())

			assert.Equal(t, models.DefaultMarketStats(), stats)
			assert.Equal(t, tt.calls, atomic.LoadInt32(&calls))

			health := client.Health()
			assert.Equal(t, int64(1), health.TotalRequests)
			assert.Equal(t, int64(1), health.FailedRequests)
			assert.Equal(t, 1, health.ConsecutiveFails)
		})
	}
}

func TestMarketClient_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	stats := newTestClient(url).FetchStats(context.Background())
	assert.Equal(t, models.DefaultMarketStats(), stats)
}

func TestMarketClient_HealthAfterSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fullCoinDocument))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.FetchStats(context.Background())

	health := client.Health()
	require.Equal(t, int64(1), health.TotalRequests)
	assert.Zero(t, health.FailedRequests)
	assert.Equal(t, "closed", health.BreakerState)
	assert.False(t, health.LastSuccess.IsZero())
}

func TestParseMarketStats_EmptyDocument(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stats := ParseMarketStats([]byte(`{}`), at)

	want := models.DefaultMarketStats()
	want.Live = true
	want.UpdatedAt = at
	assert.Equal(t, want, stats)
}
