package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/ecosystem-hub/internal/errors"
	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
	"github.com/ecosystem-hub/internal/types"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// MinPasswordLength is the shortest accepted app password
const MinPasswordLength = 6

// MaxPasswordLength is the longest password bcrypt accepts, in bytes
const MaxPasswordLength = 72

var supportedLanguages = []string{"en", "es", "zh", "ja", "ko", "fr", "de"}

// SettingsService holds user preferences. Memory is authoritative for the
// session; every change is handed to the store without waiting for it.
type SettingsService struct {
	store  storage.KeyValueStore
	logger *logging.Logger

	mu           sync.RWMutex
	settings     models.Settings
	passwordHash string
}

// NewSettingsService creates a settings service with default preferences
func NewSettingsService(store storage.KeyValueStore, logger *logging.Logger) *SettingsService {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &SettingsService{
		store:    store,
		logger:   logger.WithComponent("settings"),
		settings: models.DefaultSettings(),
	}
}

// Load reads persisted preferences, keeping defaults for anything missing or
// unparseable.
func (s *SettingsService) Load(ctx context.Context) models.Settings {
	loaded := models.DefaultSettings()

	if raw, ok := s.store.Get(ctx, storage.KeyTheme); ok {
		if theme := types.Theme(raw); theme.Valid() {
			loaded.Theme = theme
		} else {
			s.logger.WithField("value", raw).Warn("Ignoring unknown stored theme")
		}
	}
	if raw, ok := s.store.Get(ctx, storage.KeyNotifications); ok {
		if v, ok := parseStoredBool(raw); ok {
			loaded.Notifications = v
		}
	}
	if raw, ok := s.store.Get(ctx, storage.KeyBiometrics); ok {
		if v, ok := parseStoredBool(raw); ok {
			loaded.Biometrics = v
		}
	}
	if raw, ok := s.store.Get(ctx, storage.KeyLanguage); ok && raw != "" {
		loaded.Language = raw
	}
	if raw, ok := s.store.Get(ctx, storage.KeyGlassIntensity); ok {
		if g := types.GlassIntensity(raw); g.Valid() {
			loaded.GlassIntensity = g
		} else {
			s.logger.WithField("value", raw).Warn("Ignoring unknown stored glass intensity")
		}
	}
	hash, _ := s.store.Get(ctx, storage.KeyPasswordHash)
	loaded.HasPassword = hash != ""

	s.mu.Lock()
	s.settings = loaded
	s.passwordHash = hash
	s.mu.Unlock()
	return loaded
}

// parseStoredBool accepts only the literal strings written by the setters
func parseStoredBool(raw string) (bool, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// Get returns a snapshot of the current preferences
func (s *SettingsService) Get() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetTheme changes the colour scheme
func (s *SettingsService) SetTheme(ctx context.Context, theme types.Theme) error {
	if !theme.Valid() {
		return errors.NewValidationError("theme", "theme must be dark or light")
	}
	s.mu.Lock()
	s.settings.Theme = theme
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyTheme, string(theme))
	return nil
}

// SetNotifications toggles notifications
func (s *SettingsService) SetNotifications(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.settings.Notifications = enabled
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyNotifications, strconv.FormatBool(enabled))
}

// SetBiometrics toggles biometric unlock
func (s *SettingsService) SetBiometrics(ctx context.Context, enabled bool) {
	s.mu.Lock()
	s.settings.Biometrics = enabled
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyBiometrics, strconv.FormatBool(enabled))
}

// SetLanguage stores a language code. Codes outside SupportedLanguages are
// kept as given.
func (s *SettingsService) SetLanguage(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.NewValidationError("language", "language code is required")
	}
	s.mu.Lock()
	s.settings.Language = code
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyLanguage, code)
	return nil
}

// SetGlassIntensity changes the frosted-glass strength
func (s *SettingsService) SetGlassIntensity(ctx context.Context, intensity types.GlassIntensity) error {
	if !intensity.Valid() {
		return errors.NewValidationError("glassIntensity", "glass intensity must be low, medium or high")
	}
	s.mu.Lock()
	s.settings.GlassIntensity = intensity
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyGlassIntensity, string(intensity))
	return nil
}

// SetPassword stores a bcrypt hash of the app password
func (s *SettingsService) SetPassword(ctx context.Context, password, confirm string) error {
	if len(password) < MinPasswordLength {
		return errors.NewValidationError("password", "Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordLength {
		return errors.NewValidationError("password", "Password must be at most 72 bytes")
	}
	if password != confirm {
		return errors.NewValidationError("confirmPassword", "Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}

	s.mu.Lock()
	s.settings.HasPassword = true
	s.passwordHash = string(hash)
	s.mu.Unlock()
	s.store.Set(ctx, storage.KeyPasswordHash, string(hash))
	return nil
}

// VerifyPassword reports whether password matches the stored hash. With no
// password set it always reports false.
func (s *SettingsService) VerifyPassword(password string) bool {
	s.mu.RLock()
	hash := s.passwordHash
	s.mu.RUnlock()
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HasPassword reports whether an app password is set
func (s *SettingsService) HasPassword() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.HasPassword
}

// Reset restores defaults in memory only
func (s *SettingsService) Reset() {
	s.mu.Lock()
	s.settings = models.DefaultSettings()
	s.passwordHash = ""
	s.mu.Unlock()
}

// SupportedLanguages lists the selectable languages with their native names
func SupportedLanguages() []models.Language {
	out := make([]models.Language, 0, len(supportedLanguages))
	for _, code := range supportedLanguages {
		out = append(out, models.Language{Code: code, Name: LanguageName(code)})
	}
	return out
}

// LanguageName returns the native name of a supported language, or "English"
// for anything else.
func LanguageName(code string) string {
	for _, supported := range supportedLanguages {
		if supported == code {
			return display.Self.Name(language.Make(code))
		}
	}
	return "English"
}
