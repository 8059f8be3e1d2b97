package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunchService_FirstLaunch(t *testing.T) {
	ctx := testContext(t)
	store := newTestStore()
	svc := NewLaunchService(store)

	assert.False(t, svc.HasLaunched(ctx))
	assert.True(t, svc.FirstLaunch(ctx))
	assert.False(t, svc.FirstLaunch(ctx))
	assert.True(t, svc.HasLaunched(ctx))

	assert.False(t, NewLaunchService(store).FirstLaunch(ctx), "survives a restart")

	store.Clear(ctx)
	assert.True(t, svc.FirstLaunch(ctx), "clearing storage shows the intro again")
}

func TestLaunchService_FirstLaunchConcurrent(t *testing.T) {
	ctx := testContext(t)
	svc := NewLaunchService(newTestStore())

	var wg sync.WaitGroup
	var firsts int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.FirstLaunch(ctx) {
				atomic.AddInt32(&firsts, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), firsts)
}
