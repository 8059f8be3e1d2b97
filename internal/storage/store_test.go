package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend returns err from every operation
type failingBackend struct {
	err error
}

func (f *failingBackend) Name() string { return "failing" }
func (f *failingBackend) Get(context.Context, string) (string, error) { return "", f.err }
func (f *failingBackend) Set(context.Context, string, string) error { return f.err }
func (f *failingBackend) Remove(context.Context, string) error { return f.err }
func (f *failingBackend) Clear(context.Context) error { return f.err }
func (f *failingBackend) Close() error { return nil }

func TestStore_MemoryOnly(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(nil, logging.Discard())
	assert.False(t, store.Durable())

	_, ok := store.Get(ctx, KeyTheme)
	assert.False(t, ok, "absent key before any write")

	store.Set(ctx, KeyTheme, "light")
	value, ok := store.Get(ctx, KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "light", value)

	store.Remove(ctx, KeyTheme)
	store.Remove(ctx, KeyTheme)
	_, ok = store.Get(ctx, KeyTheme)
	assert.False(t, ok)
}

func TestStore_WithBackend(t *testing.T) {
	ctx := testContext(t)
	backend := NewMemoryBackend()
	store := NewStore(backend, logging.Discard())
	assert.True(t, store.Durable())

	store.Set(ctx, KeyPoints, "42")
	store.Set(ctx, KeyPoints, "42")
	raw, err := backend.Get(ctx, KeyPoints)
	require.NoError(t, err)
	assert.Equal(t, "42", raw)

	// a fresh store over the same backend sees the value
	reopened := NewStore(backend, logging.Discard())
	value, ok := reopened.Get(ctx, KeyPoints)
	require.True(t, ok)
	assert.Equal(t, "42", value)

	store.Set(ctx, KeyStreak, "3")
	store.Clear(ctx)
	assert.Equal(t, 0, backend.Len())
	_, ok = store.Get(ctx, KeyStreak)
	assert.False(t, ok)
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(&failingBackend{err: errors.New("disk full")}, logging.Discard())

	assert.NotPanics(t, func() {
		store.Set(ctx, KeyLanguage, "fr")
	})

	value, ok := store.Get(ctx, KeyLanguage)
	require.True(t, ok, "failed write still lands in the in-process cache")
	assert.Equal(t, "fr", value)

	store.Remove(ctx, KeyLanguage)
	_, ok = store.Get(ctx, KeyLanguage)
	assert.False(t, ok)

	store.Set(ctx, KeyTheme, "dark")
	store.Clear(ctx)
	_, ok = store.Get(ctx, KeyTheme)
	assert.False(t, ok)
}

// readOnlyBackend rejects writes and finds nothing
type readOnlyBackend struct {
	*MemoryBackend
}

func (b *readOnlyBackend) Set(context.Context, string, string) error {
	return errors.New("read-only file system")
}

func TestStore_FailedWriteStillReadable(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(&readOnlyBackend{MemoryBackend: NewMemoryBackend()}, logging.Discard())

	store.Set(ctx, KeyTheme, "light")

	value, ok := store.Get(ctx, KeyTheme)
	require.True(t, ok, "the backend answers not found but the cache holds the value")
	assert.Equal(t, "light", value)

	store.Remove(ctx, KeyTheme)
	_, ok = store.Get(ctx, KeyTheme)
	assert.False(t, ok)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(NewMemoryBackend(), logging.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Set(ctx, KeyHistory, "[]")
				store.Get(ctx, KeyHistory)
			}
		}()
	}
	wg.Wait()

	value, ok := store.Get(ctx, KeyHistory)
	require.True(t, ok)
	assert.Equal(t, "[]", value)
}

func TestMemoryBackend_NotFound(t *testing.T) {
	ctx := testContext(t)
	backend := NewMemoryBackend()
	_, err := backend.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
