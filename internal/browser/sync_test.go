// internal/browser/sync_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sbenkov/aviator/internal/config"
)

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		ReadinessTimeout: 150 * time.Millisecond,
		SettleDelay:      60 * time.Millisecond,
		PollInterval:     10 * time.Millisecond,
		ActionTimeout:    100 * time.Millisecond,
	}
}

func TestWaitForPageLoadEnforcesSettleDelay(t *testing.T) {
	// Readiness resolves on the very first probe; the settle delay must
	// still be served in full.
	d := newFakeDriver()
	s := NewSynchronizer(d, testSyncConfig(), zap.NewNop())

	start := time.Now()
	s.WaitForPageLoad(context.Background())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 150*time.Millisecond, "instant readiness should cost roughly one settle delay")
}

func TestWaitForPageLoadAbsorbsReadinessTimeout(t *testing.T) {
	// A page that never reports complete must not fail the wait, only
	// bound it.
	d := newFakeDriver()
	d.readyStates = []string{"loading"}
	s := NewSynchronizer(d, testSyncConfig(), zap.NewNop())

	start := time.Now()
	s.WaitForPageLoad(context.Background())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
}

func TestWaitForPageLoadSkipsSettleAfterSlowReadiness(t *testing.T) {
	// Readiness resolves on the ninth probe, roughly 80ms in, past the
	// 60ms settle delay. No second pause should be added on top.
	d := newFakeDriver()
	d.readyStates = []string{
		"loading", "loading", "loading", "loading",
		"loading", "loading", "loading", "loading",
		"complete",
	}
	s := NewSynchronizer(d, testSyncConfig(), zap.NewNop())

	start := time.Now()
	s.WaitForPageLoad(context.Background())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 130*time.Millisecond, "settle delay must be measured from the wait start, not stacked")
}

func TestWaitForPageLoadTreatsProbeErrorsAsNotReady(t *testing.T) {
	d := newFakeDriver()
	d.readyErr = errors.New("target crashed")
	s := NewSynchronizer(d, testSyncConfig(), zap.NewNop())

	start := time.Now()
	s.WaitForPageLoad(context.Background())
	elapsed := time.Since(start)

	// Errors poll until the readiness timeout, then the wait completes.
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Greater(t, d.countCalls("ReadyState"), 1)
}

func TestWaitForPageLoadHonorsCancellation(t *testing.T) {
	d := newFakeDriver()
	d.readyStates = []string{"loading"}
	cfg := testSyncConfig()
	cfg.ReadinessTimeout = 5 * time.Second
	s := NewSynchronizer(d, cfg, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	s.WaitForPageLoad(ctx)

	assert.Less(t, time.Since(start), 500*time.Millisecond, "cancellation must cut both the poll and the settle short")
}
