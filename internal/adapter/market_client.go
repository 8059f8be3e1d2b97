// Package adapter talks to external data providers.
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ecosystem-hub/internal/circuitbreaker"
	"github.com/ecosystem-hub/internal/config"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/retry"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxMarketBody bounds how much of a provider response is read
const maxMarketBody = 4 << 20

// MarketFetcher returns current token statistics. Implementations never fail
// outward: on any provider problem they return the default statistics.
type MarketFetcher interface {
	FetchStats(ctx context.Context) models.MarketStats
}

// HealthReporter is implemented by fetchers that track provider health
type HealthReporter interface {
	Health() ProviderHealth
}

// ProviderHealth summarizes recent provider calls
type ProviderHealth struct {
	URL              string    `json:"url"`
	TotalRequests    int64     `json:"totalRequests"`
	FailedRequests   int64     `json:"failedRequests"`
	ConsecutiveFails int       `json:"consecutiveFails"`
	LastSuccess      time.Time `json:"lastSuccess"`
	LastFailure      time.Time `json:"lastFailure"`
	BreakerState     string    `json:"breakerState"`
}

// MarketClient fetches token statistics from a CoinGecko-style coin document
type MarketClient struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	retry   *retry.Config
	breaker *circuitbreaker.CircuitBreaker
	logger  *logging.Logger

	mu     sync.Mutex
	health ProviderHealth
}

// NewMarketClient creates a market client from config
func NewMarketClient(cfg *config.MarketConfig, logger *logging.Logger) *MarketClient {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	retryCfg := retry.DefaultConfig()
	if cfg.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.RetryAttempts
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &MarketClient{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retryCfg,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("market")),
		logger:  logger.WithComponent("market_client"),
		health:  ProviderHealth{URL: cfg.URL},
	}
}

// FetchStats returns live statistics, filling absent or zero fields from the
// defaults. Any failure yields DefaultMarketStats.
func (c *MarketClient) FetchStats(ctx context.Context) models.MarketStats {
	var body []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, c.retry, func(ctx context.Context, attempt int) error {
			b, err := c.get(ctx)
			if err != nil {
				return err
			}
			body = b
			return nil
		})
	})
	c.record(err)

	if err != nil {
		c.logger.WithError(err).Warn("Market fetch failed, using default stats")
		return models.DefaultMarketStats()
	}

	return ParseMarketStats(body, time.Now().UTC())
}

func (c *MarketClient) get(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &retry.Permanent{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &retry.Permanent{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMarketBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, &retry.Permanent{Err: fmt.Errorf("provider returned status %d", resp.StatusCode)}
	}

	if !gjson.ValidBytes(body) {
		return nil, &retry.Permanent{Err: fmt.Errorf("provider returned invalid JSON")}
	}
	return body, nil
}

func (c *MarketClient) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	c.health.TotalRequests++
	if err != nil {
		c.health.FailedRequests++
		c.health.ConsecutiveFails++
		c.health.LastFailure = now
		return
	}
	c.health.ConsecutiveFails = 0
	c.health.LastSuccess = now
}

// Health returns a snapshot of provider health
func (c *MarketClient) Health() ProviderHealth {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := c.health
	h.BreakerState = string(c.breaker.State())
	return h
}

// ParseMarketStats extracts statistics from a coin document. Every field that
// is absent, non-numeric or zero takes its default; burned supply is always
// the default.
func ParseMarketStats(body []byte, fetchedAt time.Time) models.MarketStats {
	defaults := models.DefaultMarketStats()
	doc := gjson.ParseBytes(body)

	field := func(path string, fallback float64) float64 {
		v := doc.Get(path)
		if v.Type != gjson.Number || v.Float() == 0 {
			return fallback
		}
		return v.Float()
	}

	return models.MarketStats{
		Price:             field("market_data.current_price.usd", defaults.Price),
		PriceChange24h:    field("market_data.price_change_percentage_24h", defaults.PriceChange24h),
		MarketCap:         field("market_data.market_cap.usd", defaults.MarketCap),
		TotalSupply:       field("market_data.total_supply", defaults.TotalSupply),
		CirculatingSupply: field("market_data.circulating_supply", defaults.CirculatingSupply),
		BurnedSupply:      defaults.BurnedSupply,
		Volume24h:         field("market_data.total_volume.usd", defaults.Volume24h),
		Live:              true,
		UpdatedAt:         fetchedAt,
	}
}
