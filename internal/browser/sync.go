// internal/browser/sync.go
package browser

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sbenkov/aviator/internal/config"
)

// readinessProber reads the page's load phase indicator. Satisfied by Driver.
type readinessProber interface {
	ReadyState(ctx context.Context) (string, error)
}

// Synchronizer blocks callers after navigations and actions until the page
// is plausibly ready. It combines two waits: a bounded poll of the document
// readiness signal, and a minimum settle delay for late-mutating scripts
// that fire after the readiness signal resolves.
type Synchronizer struct {
	prober readinessProber
	cfg    config.SyncConfig
	logger *zap.Logger
}

func NewSynchronizer(prober readinessProber, cfg config.SyncConfig, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		prober: prober,
		cfg:    cfg,
		logger: logger.Named("sync"),
	}
}

// WaitForPageLoad blocks until the page reports readiness or the readiness
// timeout lapses, then tops the elapsed time up to the settle delay. The
// settle delay is measured from the start of the wait, so a page that was
// slow to report readiness is not punished with a second full pause.
//
// Readiness is advisory: a timed-out poll is logged and absorbed, never
// surfaced. The only way out early is ctx cancellation, which the caller
// observes through its own context.
func (s *Synchronizer) WaitForPageLoad(ctx context.Context) {
	start := time.Now()
	s.awaitReadiness(ctx)

	if remaining := s.cfg.SettleDelay - time.Since(start); remaining > 0 {
		s.logger.Debug("Page ready, settling.", zap.Duration("remaining", remaining))
		sleepCtx(ctx, remaining)
	}
}

// awaitReadiness polls the readiness signal until it reports complete, the
// configured timeout lapses, or ctx is canceled. Probe errors are treated
// as "not ready yet"; a dead connection surfaces on the next real call.
func (s *Synchronizer) awaitReadiness(ctx context.Context) {
	deadline := time.NewTimer(s.cfg.ReadinessTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		state, err := s.prober.ReadyState(ctx)
		if err == nil && state == "complete" {
			return
		}
		if err != nil {
			s.logger.Debug("Readiness probe failed.", zap.Error(err))
		}

		select {
		case <-deadline.C:
			s.logger.Debug("Page readiness timed out, proceeding anyway.",
				zap.Duration("timeout", s.cfg.ReadinessTimeout))
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
