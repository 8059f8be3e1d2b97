package service

import (
	"context"
	"time"

	"github.com/ecosystem-hub/internal/adapter"
	"github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/ecosystem-hub/internal/types"
)

// HubConfig tunes the state holders built by NewHub
type HubConfig struct {
	WriteBuffer  int
	RefreshDelay time.Duration
	Recorder     ActivityRecorder
	Clock        func() time.Time
	Random       func() float64
}

// Hub wires every state holder around one store and runs the user actions
// that span more than one of them.
type Hub struct {
	store    *storage.Store
	writer   *storage.WriteBehind
	recorder ActivityRecorder
	logger   *logging.Logger

	settings *SettingsService
	points   *PointsService
	wallet   *WalletService
	browser  *BrowserService
	market   *MarketService
	launch   *LaunchService
}

// NewHub builds the state holders. fetcher may be nil to run without live
// market data.
func NewHub(store *storage.Store, fetcher adapter.MarketFetcher, cfg HubConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	if cfg.WriteBuffer <= 0 {
		cfg.WriteBuffer = 256
	}

	writer := storage.NewWriteBehind(store, cfg.WriteBuffer)

	var pointsOpts []PointsOption
	if cfg.Clock != nil {
		pointsOpts = append(pointsOpts, WithClock(cfg.Clock))
	}
	if cfg.Recorder != nil {
		pointsOpts = append(pointsOpts, WithActivityRecorder(cfg.Recorder))
	}

	walletOpts := []WalletOption{WithRefreshDelay(cfg.RefreshDelay)}
	if cfg.Random != nil {
		walletOpts = append(walletOpts, WithRandom(cfg.Random))
	}

	points := NewPointsService(writer, logger, pointsOpts...)
	browser := NewBrowserService(writer, points, logger)
	if cfg.Clock != nil {
		browser.now = cfg.Clock
	}

	return &Hub{
		store:    store,
		writer:   writer,
		recorder: cfg.Recorder,
		logger:   logger.WithComponent("hub"),
		settings: NewSettingsService(writer, logger),
		points:   points,
		wallet:   NewWalletService(writer, logger, walletOpts...),
		browser:  browser,
		market:   NewMarketService(fetcher, logger),
		launch:   NewLaunchService(store),
	}
}

// Settings returns the settings holder
func (h *Hub) Settings() *SettingsService { return h.settings }

// Points returns the points engine
func (h *Hub) Points() *PointsService { return h.points }

// Wallet returns the wallet holder
func (h *Hub) Wallet() *WalletService { return h.wallet }

// Browser returns the browser holder
func (h *Hub) Browser() *BrowserService { return h.browser }

// Market returns the market stats cache
func (h *Hub) Market() *MarketService { return h.market }

// Launch returns the first-launch tracker
func (h *Hub) Launch() *LaunchService { return h.launch }

// Durable reports whether state survives a restart
func (h *Hub) Durable() bool { return h.store.Durable() }

// AwardTotals sums recorded awards per action. It is a not-found error when
// no recorder keeps totals.
func (h *Hub) AwardTotals(ctx context.Context) (map[string]int64, error) {
	totals, ok := h.recorder.(ActivityTotals)
	if !ok {
		return nil, errors.NewNotFoundError("activity ledger", "")
	}
	result, err := totals.TotalsByAction(ctx)
	if err != nil {
		return nil, errors.NewStorageError("award totals", "point_awards", err)
	}
	return result, nil
}

// Load restores persisted state: settings, then points (checking the
// streak), then wallet, then browser lists.
func (h *Hub) Load(ctx context.Context) {
	settings := h.settings.Load(ctx)
	profile := h.points.Load(ctx)
	wallet := h.wallet.Load(ctx)
	h.browser.Load(ctx)

	h.logger.WithFields(map[string]interface{}{
		"theme":     string(settings.Theme),
		"points":    profile.Points,
		"streak":    profile.Streak,
		"hasWallet": wallet != nil,
		"durable":   h.store.Durable(),
	}).Info("Hub state loaded")
}

// CreateWallet generates a wallet and awards the creation bonus
func (h *Hub) CreateWallet(ctx context.Context) (string, error) {
	mnemonic, err := h.wallet.Create(ctx)
	if err != nil {
		return "", err
	}
	h.award(ctx, types.ActionWalletCreate)
	return mnemonic, nil
}

// ImportWallet installs a wallet from a phrase and awards the import bonus
func (h *Hub) ImportWallet(ctx context.Context, mnemonic string) (*models.Wallet, error) {
	w, err := h.wallet.Import(ctx, mnemonic)
	if err != nil {
		return nil, err
	}
	h.award(ctx, types.ActionWalletImport)
	return w, nil
}

// RefreshWallet refreshes holdings and awards the refresh bonus
func (h *Hub) RefreshWallet(ctx context.Context) (models.WalletView, error) {
	if err := h.wallet.RefreshBalance(ctx); err != nil {
		return models.WalletView{}, err
	}
	h.award(ctx, types.ActionWalletRefresh)
	return h.wallet.View(), nil
}

// SendTransaction performs a mock send and awards the transaction bonus
func (h *Hub) SendTransaction(ctx context.Context, in SendInput) (*models.SendReceipt, error) {
	receipt, err := h.wallet.Send(ctx, in)
	if err != nil {
		return nil, err
	}
	h.award(ctx, types.ActionTransactionSend)
	return receipt, nil
}

// RefreshMarket refetches market stats and awards the refresh bonus
func (h *Hub) RefreshMarket(ctx context.Context) models.MarketStats {
	stats := h.market.Refresh(ctx)
	h.award(ctx, types.ActionRefresh)
	return stats
}

// VisitDApp returns the catalogue entry to open and awards the visit bonus
func (h *Hub) VisitDApp(ctx context.Context, name string) (models.DApp, error) {
	dapp, ok := FindDApp(name)
	if !ok {
		return models.DApp{}, errors.NewNotFoundError("dapp", name)
	}
	h.award(ctx, types.ActionDAppVisit)
	return dapp, nil
}

// ClearCache waits for pending writes, wipes the store and puts every state
// holder back to its defaults.
func (h *Hub) ClearCache(ctx context.Context) {
	h.writer.Clear(ctx)
	h.settings.Reset()
	h.points.Reset()
	h.wallet.Reset()
	h.browser.Reset()
	h.market.Reset()
	h.logger.Info("Cache cleared")
}

// Flush blocks until every scheduled write has reached the store
func (h *Hub) Flush(ctx context.Context) error {
	return h.writer.Flush(ctx)
}

// Close drains pending writes and closes the store
func (h *Hub) Close(ctx context.Context) error {
	if err := h.writer.Close(ctx); err != nil {
		return err
	}
	return h.store.Close()
}

func (h *Hub) award(ctx context.Context, action types.Action) {
	if _, err := h.points.AddPoints(ctx, types.ActionPoints[action], string(action)); err != nil {
		h.logger.WithField("action", string(action)).WithError(err).Warn("Failed to award points")
	}
}
