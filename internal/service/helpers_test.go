package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"github.com/ecosystem-hub/internal/models"
	"github.com/ecosystem-hub/internal/storage"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestStore() *storage.Store {
	return storage.NewStore(storage.NewMemoryBackend(), logging.Discard())
}

// fixedClock is a settable clock for streak tests
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{now: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recordingAwarder captures awards made by other services
type recordingAwarder struct {
	mu     sync.Mutex
	awards []string
}

func (r *recordingAwarder) AddPoints(_ context.Context, amount int, action string) (*models.AwardResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards = append(r.awards, action)
	return &models.AwardResult{Awarded: amount}, nil
}

func (r *recordingAwarder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.awards...)
}

// recordingLedger captures award events
type recordingLedger struct {
	mu     sync.Mutex
	events []models.AwardEvent
	err    error
}

// TotalsByAction sums the recorded amounts per action
func (r *recordingLedger) TotalsByAction(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	totals := make(map[string]int64)
	for _, e := range r.events {
		totals[e.Action] += int64(e.Amount)
	}
	return totals, nil
}

func (r *recordingLedger) RecordAward(_ context.Context, event models.AwardEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}
