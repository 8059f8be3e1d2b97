package storage

import (
	"context"
	"sync"
)

type opKind int

const (
	opSet opKind = iota
	opRemove
	opBarrier
)

type writeOp struct {
	kind  opKind
	key   string
	value string
	done  chan struct{}
}

// WriteBehind queues writes to a KeyValueStore and applies them on a single
// background goroutine in the order they were submitted. Reads go straight to
// the underlying store; callers keep their own in-memory state as the source
// of truth between a write and its application.
type WriteBehind struct {
	store KeyValueStore
	ops   chan writeOp

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewWriteBehind starts the writer goroutine. buffer bounds the number of
// queued ops before Set/Remove block.
func NewWriteBehind(store KeyValueStore, buffer int) *WriteBehind {
	if buffer <= 0 {
		buffer = 1
	}
	w := &WriteBehind{
		store: store,
		ops:   make(chan writeOp, buffer),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *WriteBehind) run() {
	defer w.wg.Done()
	ctx := context.Background()
	for op := range w.ops {
		switch op.kind {
		case opSet:
			w.store.Set(ctx, op.key, op.value)
		case opRemove:
			w.store.Remove(ctx, op.key)
		case opBarrier:
			close(op.done)
		}
	}
}

// Get reads through to the underlying store
func (w *WriteBehind) Get(ctx context.Context, key string) (string, bool) {
	return w.store.Get(ctx, key)
}

// Set schedules a write of value under key
func (w *WriteBehind) Set(ctx context.Context, key, value string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.store.Set(ctx, key, value)
		return
	}
	w.ops <- writeOp{kind: opSet, key: key, value: value}
}

// Remove schedules deletion of key
func (w *WriteBehind) Remove(ctx context.Context, key string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.store.Remove(ctx, key)
		return
	}
	w.ops <- writeOp{kind: opRemove, key: key}
}

// Clear waits for queued ops to land and then clears the store, so no
// earlier write can resurrect a key afterwards.
func (w *WriteBehind) Clear(ctx context.Context) {
	_ = w.Flush(ctx)
	w.store.Clear(ctx)
}

// Flush blocks until every op queued before the call has been applied
func (w *WriteBehind) Flush(ctx context.Context) error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return nil
	}
	done := make(chan struct{})
	w.ops <- writeOp{kind: opBarrier, done: done}
	w.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the queue and stops the writer. Later writes are applied
// synchronously.
func (w *WriteBehind) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.ops)
	w.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
