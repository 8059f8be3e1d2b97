package service

import (
	"context"
	"sync"

	"github.com/ecosystem-hub/internal/storage"
)

// LaunchService tracks whether the intro has been shown
type LaunchService struct {
	store storage.KeyValueStore
	mu    sync.Mutex
}

// NewLaunchService creates a launch tracker
func NewLaunchService(store storage.KeyValueStore) *LaunchService {
	return &LaunchService{store: store}
}

// HasLaunched reports whether the app was launched before
func (s *LaunchService) HasLaunched(ctx context.Context) bool {
	v, ok := s.store.Get(ctx, storage.KeyHasLaunched)
	return ok && v == "true"
}

// MarkLaunched records the first launch
func (s *LaunchService) MarkLaunched(ctx context.Context) {
	s.store.Set(ctx, storage.KeyHasLaunched, "true")
}

// FirstLaunch returns true exactly once, marking the app as launched
func (s *LaunchService) FirstLaunch(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HasLaunched(ctx) {
		return false
	}
	s.MarkLaunched(ctx)
	return true
}
