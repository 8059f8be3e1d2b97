package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore remembers the order in which writes arrive
type recordingStore struct {
	*Store
	mu  sync.Mutex
	log []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: NewStore(nil, logging.Discard())}
}

func (r *recordingStore) Set(ctx context.Context, key, value string) {
	r.mu.Lock()
	r.log = append(r.log, "set "+key+"="+value)
	r.mu.Unlock()
	r.Store.Set(ctx, key, value)
}

func (r *recordingStore) Remove(ctx context.Context, key string) {
	r.mu.Lock()
	r.log = append(r.log, "remove "+key)
	r.mu.Unlock()
	r.Store.Remove(ctx, key)
}

func (r *recordingStore) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

func TestWriteBehind_AppliesInOrder(t *testing.T) {
	ctx := testContext(t)
	store := newRecordingStore()
	w := NewWriteBehind(store, 4)
	defer func() { _ = w.Close(ctx) }()

	var want []string
	for i := 0; i < 50; i++ {
		v := strconv.Itoa(i)
		w.Set(ctx, KeyPoints, v)
		want = append(want, "set points="+v)
	}
	w.Remove(ctx, KeyPoints)
	want = append(want, "remove points")

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, want, store.entries())

	_, ok := store.Get(ctx, KeyPoints)
	assert.False(t, ok)
}

func TestWriteBehind_LastWriteWins(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(NewMemoryBackend(), logging.Discard())
	w := NewWriteBehind(store, 16)

	for i := 1; i <= 100; i++ {
		w.Set(ctx, KeyStreak, fmt.Sprint(i))
	}
	require.NoError(t, w.Close(ctx))

	value, ok := store.Get(ctx, KeyStreak)
	require.True(t, ok)
	assert.Equal(t, "100", value)
}

func TestWriteBehind_SynchronousAfterClose(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(nil, logging.Discard())
	w := NewWriteBehind(store, 1)
	require.NoError(t, w.Close(ctx))
	require.NoError(t, w.Close(ctx))

	w.Set(ctx, KeyTheme, "light")
	value, ok := w.Get(ctx, KeyTheme)
	require.True(t, ok)
	assert.Equal(t, "light", value)

	assert.NoError(t, w.Flush(ctx))
}

func TestWriteBehind_ClearWaitsForPendingWrites(t *testing.T) {
	ctx := testContext(t)
	store := NewStore(NewMemoryBackend(), logging.Discard())
	w := NewWriteBehind(store, 64)
	defer func() { _ = w.Close(ctx) }()

	for i := 0; i < 32; i++ {
		w.Set(ctx, fmt.Sprintf("key-%d", i), "v")
	}
	w.Clear(ctx)
	require.NoError(t, w.Flush(ctx))

	for i := 0; i < 32; i++ {
		_, ok := store.Get(ctx, fmt.Sprintf("key-%d", i))
		assert.False(t, ok)
	}
}

func TestWriteBehind_FlushHonoursContext(t *testing.T) {
	blocker := &blockingStore{Store: NewStore(nil, logging.Discard()), release: make(chan struct{})}
	w := NewWriteBehind(blocker, 4)
	defer func() {
		close(blocker.release)
		_ = w.Close(context.Background())
	}()

	w.Set(context.Background(), KeyTheme, "dark")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Flush(ctx), context.DeadlineExceeded)
}

// blockingStore stalls every Set until release is closed
type blockingStore struct {
	*Store
	release chan struct{}
}

func (b *blockingStore) Set(ctx context.Context, key, value string) {
	<-b.release
	b.Store.Set(ctx, key, value)
}
