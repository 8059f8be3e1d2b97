package storage

import (
	"context"
	"testing"
	"time"
)

// testContext bounds a test with a ten second deadline
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
