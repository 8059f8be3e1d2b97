package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ecosystem-hub/internal/adapter"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var dapps = []models.DApp{
	{Name: "MultiVM", Description: "Cross-chain virtual machine", URL: "https://multivm.injective.com/", Icon: "🔗", Category: "Infrastructure"},
	{Name: "Injective Bridge", Description: "Bridge assets across chains", URL: "https://bridge.injective.network/", Icon: "🌉", Category: "Bridge"},
	{Name: "Paradyze", Description: "AI-powered perpetual DEX", URL: "https://paradyze.io/", Icon: "🤖", Category: "Trading"},
	{Name: "Ninjablaze", Description: "Fast trading platform", URL: "https://blaze.ninja/", Icon: "⚡", Category: "Trading"},
	{Name: "Hodlher", Description: "AI portfolio management", URL: "https://dapp.hodlher.ai/", Icon: "💎", Category: "DeFi"},
	{Name: "Campclash", Description: "Gaming on Injective", URL: "https://www.campclash.fun/", Icon: "🎮", Category: "Gaming"},
	{Name: "Neptune Finance", Description: "DeFi protocol", URL: "https://www.nept.finance/", Icon: "🔱", Category: "DeFi"},
	{Name: "Hyperninja", Description: "Play-to-earn gaming", URL: "https://www.game.hyperninja.io/", Icon: "🥷", Category: "Gaming"},
	{Name: "Talis", Description: "NFT Marketplace", URL: "https://injective.talis.art/", Icon: "🖼️", Category: "NFT"},
	{Name: "INJHub", Description: "Staking & Governance", URL: "https://injhub.com/", Icon: "🏛️", Category: "Staking"},
	{Name: "Helix", Description: "Trading & Swaps", URL: "https://helixapp.com/", Icon: "🧬", Category: "Trading"},
	{Name: "Choice Exchange", Description: "Decentralized exchange", URL: "https://choice.exchange/", Icon: "✨", Category: "Trading"},
}

// DApps returns the home screen catalogue
func DApps() []models.DApp {
	return append([]models.DApp(nil), dapps...)
}

// FindDApp looks a catalogue entry up by name
func FindDApp(name string) (models.DApp, bool) {
	for _, d := range dapps {
		if d.Name == name {
			return d, true
		}
	}
	return models.DApp{}, false
}

// MarketService caches the latest token statistics
type MarketService struct {
	fetcher adapter.MarketFetcher
	logger  *logging.Logger

	mu    sync.RWMutex
	stats models.MarketStats
}

// NewMarketService starts with the default statistics. fetcher may be nil,
// in which case Refresh keeps the defaults.
func NewMarketService(fetcher adapter.MarketFetcher, logger *logging.Logger) *MarketService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &MarketService{
		fetcher: fetcher,
		logger:  logger.WithComponent("market"),
		stats:   models.DefaultMarketStats(),
	}
}

// ProviderHealth reports the fetcher's recent calls. ok is false when the
// fetcher does not track health.
func (s *MarketService) ProviderHealth() (adapter.ProviderHealth, bool) {
	reporter, ok := s.fetcher.(adapter.HealthReporter)
	if !ok {
		return adapter.ProviderHealth{}, false
	}
	return reporter.Health(), true
}

// Refresh fetches new statistics. A failed fetch keeps the last live
// statistics when there are any.
func (s *MarketService) Refresh(ctx context.Context) models.MarketStats {
	if s.fetcher == nil {
		return s.Stats()
	}

	fetched := s.fetcher.FetchStats(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !fetched.Live && s.stats.Live {
		s.logger.Debug("Keeping last live market stats")
		return s.stats
	}
	s.stats = fetched
	return s.stats
}

// Stats returns the cached statistics
func (s *MarketService) Stats() models.MarketStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Reset restores the default statistics
func (s *MarketService) Reset() {
	s.mu.Lock()
	s.stats = models.DefaultMarketStats()
	s.mu.Unlock()
}

// FormatUSD renders a dollar amount as $X.XXB, $X.XXM or $X.XX
func FormatUSD(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

var supplyPrinter = message.NewPrinter(language.English)

// FormatSupply renders a token amount as X.XXM, or with thousands separators
// below a million.
func FormatSupply(v float64) string {
	if v >= 1e6 {
		return fmt.Sprintf("%.2fM", v/1e6)
	}
	if v == math.Trunc(v) {
		return supplyPrinter.Sprintf("%d", int64(v))
	}
	return supplyPrinter.Sprintf("%.3f", v)
}
