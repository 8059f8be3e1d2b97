// Package storage provides the string-keyed persistent store and its backends.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/ecosystem-hub/internal/logging"
)

// Keys written by the hub services. The store does not enforce namespacing;
// callers own their keys.
const (
	KeyHasLaunched    = "hasLaunched"
	KeyTheme          = "theme"
	KeyNotifications  = "notifications"
	KeyBiometrics     = "biometrics"
	KeyLanguage       = "language"
	KeyGlassIntensity = "glassIntensity"
	KeyPasswordHash   = "passwordHash"
	KeyPoints         = "points"
	KeyStreak         = "streak"
	KeyBadges         = "badges"
	KeyLastActiveDate = "lastActiveDate"
	KeyActionHistory  = "actionHistory"
	KeyWallet         = "wallet"
	KeyBookmarks      = "bookmarks"
	KeyHistory        = "history"
)

// ErrNotFound is returned by a Backend when a key is absent
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value store
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// KeyValueStore is the contract the hub services depend on.
// Get never fails outward; writes are best-effort.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// Store fronts an optional durable Backend with an in-process cache.
// Backend failures are logged and the cache takes over, so no operation
// ever returns an error to the caller.
type Store struct {
	backend Backend
	logger  *logging.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewStore creates a store. A nil backend gives a purely in-process store
// whose values are lost on restart.
func NewStore(backend Backend, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	name := "memory-only"
	if backend != nil {
		name = backend.Name()
	}
	return &Store{
		backend: backend,
		logger:  logger.WithComponent("storage").WithField("backend", name),
		cache:   make(map[string]string),
	}
}

// Durable reports whether values survive a restart
func (s *Store) Durable() bool {
	return s.backend != nil
}

// Get returns the value for key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if s.backend != nil {
		value, err := s.backend.Get(ctx, key)
		if err == nil {
			return value, true
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.WithField("key", key).WithError(err).Warn("Backend read failed, using in-process cache")
		}
	}

	// a key missing from the backend may still hold a value whose write failed
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.cache[key]
	return value, ok
}

// Set stores value under key
func (s *Store) Set(ctx context.Context, key, value string) {
	if s.backend != nil {
		if err := s.backend.Set(ctx, key, value); err != nil {
			s.logger.WithField("key", key).WithError(err).Warn("Backend write failed, value kept in process only")
		}
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
}

// Remove deletes key; removing an absent key is a no-op
func (s *Store) Remove(ctx context.Context, key string) {
	if s.backend != nil {
		if err := s.backend.Remove(ctx, key); err != nil {
			s.logger.WithField("key", key).WithError(err).Warn("Backend remove failed")
		}
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

// Clear deletes every key
func (s *Store) Clear(ctx context.Context) {
	if s.backend != nil {
		if err := s.backend.Clear(ctx); err != nil {
			s.logger.WithError(err).Warn("Backend clear failed")
		}
	}

	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Close releases the backend
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
