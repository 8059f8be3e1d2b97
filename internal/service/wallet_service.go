package service

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRefreshDelay simulates the latency of a balance lookup
const DefaultRefreshDelay = time.Second

var (
	refreshFactorMin  = decimal.RequireFromString("0.98")
	refreshFactorSpan = decimal.RequireFromString("0.04")

	injAddressPattern = regexp.MustCompile(`^inj1[0-9a-z]{38}$`)
)

// MockTokens returns the demo token list shown for every wallet
func MockTokens() []models.TokenHolding {
	return []models.TokenHolding{
		{Name: "Injective", Symbol: "INJ", Balance: decimal.RequireFromString("125.50"), Value: decimal.RequireFromString("3082.28")},
		{Name: "Tether USD", Symbol: "USDT", Balance: decimal.RequireFromString("500.00"), Value: decimal.RequireFromString("500.00")},
		{Name: "USD Coin", Symbol: "USDC", Balance: decimal.RequireFromString("250.00"), Value: decimal.RequireFromString("250.00")},
		{Name: "Wrapped Ethereum", Symbol: "WETH", Balance: decimal.RequireFromString("0.5"), Value: decimal.RequireFromString("1250.00")},
	}
}

// SendInput is a mock transfer request
type SendInput struct {
	To     string          `json:"to"`
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// WalletService holds the single pseudo-wallet and its mock holdings
type WalletService struct {
	store        storage.KeyValueStore
	logger       *logging.Logger
	refreshDelay time.Duration
	random       func() float64
	now          func() time.Time

	mu     sync.RWMutex
	wallet *models.Wallet
	tokens []models.TokenHolding
}

// WalletOption customizes a WalletService
type WalletOption func(*WalletService)

// WithRefreshDelay sets the simulated balance lookup latency
func WithRefreshDelay(d time.Duration) WalletOption {
	return func(s *WalletService) { s.refreshDelay = d }
}

// WithRandom replaces the [0,1) source used to perturb holdings
func WithRandom(random func() float64) WalletOption {
	return func(s *WalletService) { s.random = random }
}

// NewWalletService creates a service with no wallet installed
func NewWalletService(store storage.KeyValueStore, logger *logging.Logger, opts ...WalletOption) *WalletService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &WalletService{
		store:        store,
		logger:       logger.WithComponent("wallet"),
		refreshDelay: DefaultRefreshDelay,
		random:       rand.Float64,
		now:          time.Now,
		tokens:       MockTokens(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load installs the persisted wallet, if any
func (s *WalletService) Load(ctx context.Context) *models.Wallet {
	raw, ok := s.store.Get(ctx, storage.KeyWallet)
	if !ok {
		return nil
	}

	var w models.Wallet
	if _, err := storage.DecodeVersioned(raw, &w); err != nil || w.Address == "" {
		s.logger.WithField("key", storage.KeyWallet).WithError(err).Warn("Ignoring corrupt stored wallet")
		return nil
	}

	s.mu.Lock()
	s.wallet = &w
	s.mu.Unlock()
	return s.Wallet()
}

// Create generates a fresh mnemonic, installs the wallet and returns the phrase
func (s *WalletService) Create(ctx context.Context) (string, error) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		return "", errors.NewInternalError("failed to generate mnemonic", err)
	}
	s.install(ctx, models.Wallet{Address: DeriveAddress(mnemonic), Mnemonic: mnemonic})
	return mnemonic, nil
}

// Import installs a wallet from a 12 or 24 word phrase, replacing any
// existing wallet.
func (s *WalletService) Import(ctx context.Context, mnemonic string) (*models.Wallet, error) {
	normalized, count := NormalizeMnemonic(mnemonic)
	if count != 12 && count != 24 {
		return nil, errors.NewValidationError("mnemonic", "Please enter a valid 12 or 24 word mnemonic")
	}
	w := models.Wallet{Address: DeriveAddress(normalized), Mnemonic: normalized}
	s.install(ctx, w)
	return &w, nil
}

func (s *WalletService) install(ctx context.Context, w models.Wallet) {
	s.mu.Lock()
	s.wallet = &w
	s.mu.Unlock()

	raw, err := storage.EncodeVersioned(w)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode wallet")
		return
	}
	s.store.Set(ctx, storage.KeyWallet, raw)
	s.logger.WithField("address", w.Address).Info("Wallet installed")
}

// Delete removes the wallet; the balance drops to zero
func (s *WalletService) Delete(ctx context.Context) {
	s.mu.Lock()
	s.wallet = nil
	s.mu.Unlock()
	s.store.Remove(ctx, storage.KeyWallet)
}

// RefreshBalance waits the simulated latency and then nudges every holding
// value by a factor in [0.98, 1.02].
func (s *WalletService) RefreshBalance(ctx context.Context) error {
	if s.refreshDelay > 0 {
		timer := time.NewTimer(s.refreshDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tokens {
		factor := refreshFactorMin.Add(refreshFactorSpan.Mul(decimal.NewFromFloat(s.random())))
		s.tokens[i].Value = s.tokens[i].Value.Mul(factor).Round(8)
	}
	return nil
}

// Send validates a mock transfer and returns a receipt. Holdings are not
// changed and nothing leaves the process.
func (s *WalletService) Send(ctx context.Context, in SendInput) (*models.SendReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.wallet == nil {
		return nil, errors.NewNotFoundError("wallet", "")
	}

	to := strings.TrimSpace(in.To)
	switch {
	case to == "":
		return nil, errors.NewValidationError("to", "recipient address is required")
	case common.IsHexAddress(to):
		to = common.HexToAddress(to).Hex()
	case injAddressPattern.MatchString(to):
	default:
		return nil, errors.NewValidationError("to", "recipient must be an inj1 or 0x address")
	}

	if !in.Amount.IsPositive() {
		return nil, errors.NewValidationError("amount", "amount must be positive")
	}

	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	var holding *models.TokenHolding
	for i := range s.tokens {
		if s.tokens[i].Symbol == symbol {
			holding = &s.tokens[i]
			break
		}
	}
	if holding == nil {
		return nil, errors.NewValidationError("symbol", "token not held: "+in.Symbol)
	}
	if in.Amount.GreaterThan(holding.Balance) {
		return nil, errors.NewValidationError("amount", "insufficient "+symbol+" balance")
	}

	receipt := &models.SendReceipt{
		ID:        uuid.NewString(),
		From:      s.wallet.Address,
		To:        to,
		Symbol:    symbol,
		Amount:    in.Amount,
		CreatedAt: s.now().UTC(),
	}
	s.logger.WithFields(map[string]interface{}{
		"id":     receipt.ID,
		"to":     receipt.To,
		"symbol": symbol,
		"amount": in.Amount.String(),
	}).Info("Mock transfer accepted")
	return receipt, nil
}

// Wallet returns a copy of the installed wallet, or nil
func (s *WalletService) Wallet() *models.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.wallet == nil {
		return nil
	}
	w := *s.wallet
	return &w
}

// HasWallet reports whether a wallet is installed
func (s *WalletService) HasWallet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet != nil
}

// Balance is the sum of holding values, or zero with no wallet
func (s *WalletService) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balanceLocked()
}

func (s *WalletService) balanceLocked() decimal.Decimal {
	if s.wallet == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, t := range s.tokens {
		total = total.Add(t.Value)
	}
	return total
}

// Tokens returns a copy of the holdings
func (s *WalletService) Tokens() []models.TokenHolding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TokenHolding(nil), s.tokens...)
}

// View bundles wallet, balance and tokens for rendering
func (s *WalletService) View() models.WalletView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var w *models.Wallet
	if s.wallet != nil {
		copied := *s.wallet
		w = &copied
	}
	return models.WalletView{
		Wallet:  w,
		Balance: s.balanceLocked(),
		Tokens:  append([]models.TokenHolding(nil), s.tokens...),
	}
}

// Reset drops the wallet and restores the demo holdings in memory only
func (s *WalletService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallet = nil
	s.tokens = MockTokens()
}
