// internal/browser/session.go
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sbenkov/aviator/internal/browser/dom"
	"github.com/sbenkov/aviator/internal/browser/stealth"
	"github.com/sbenkov/aviator/internal/config"
)

// driverFactory builds the low-level connection. Production sessions launch
// a real browser; tests substitute a fake.
type driverFactory func(ctx context.Context, cfg config.BrowserConfig, pollInterval time.Duration, persona stealth.Persona, logger *zap.Logger) (Driver, error)

// Session is the unit of browser work handed to one agent. It owns at most
// one live connection, created lazily on first use and re-created on first
// use after Close. All interaction goes through index-based state snapshots:
// the agent observes via RefreshState and acts via the *ByIndex methods
// against the snapshot it observed.
//
// A session serializes its operations; it is safe for concurrent use but
// callers should treat it as a single logical actor.
type Session struct {
	id      string
	cfg     *config.Config
	logger  *zap.Logger
	persona stealth.Persona
	limiter *rate.Limiter
	indexer *dom.Indexer

	newDriver driverFactory
	onClose   func(id string)

	mu     sync.Mutex
	driver Driver
	syncer *Synchronizer
	exec   *executor
}

// NewSession creates an unconnected session. No browser is launched until
// the first operation that needs one.
func NewSession(cfg *config.Config, logger *zap.Logger) *Session {
	id := uuid.NewString()

	var limiter *rate.Limiter
	if nps := cfg.Browser.NavigationsPerSecond; nps > 0 {
		limiter = rate.NewLimiter(rate.Limit(nps), 1)
	}

	log := logger.Named("session").With(zap.String("session_id", id))
	return &Session{
		id:        id,
		cfg:       cfg,
		logger:    log,
		persona:   stealth.DefaultPersona,
		limiter:   limiter,
		indexer:   dom.NewIndexer(log),
		newDriver: newCDPDriver,
	}
}

// ID returns the session's stable identifier.
func (s *Session) ID() string { return s.id }

// Init eagerly establishes the browser connection. Optional; every
// operation creates the connection on demand.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.connLocked(ctx)
	return err
}

// connLocked returns the live executor, creating the connection and its
// companions when none exists. Callers must hold s.mu.
func (s *Session) connLocked(ctx context.Context) (*executor, error) {
	if s.driver == nil {
		d, err := s.newDriver(ctx, s.cfg.Browser, s.cfg.Sync.PollInterval, s.persona, s.logger)
		if err != nil {
			return nil, fmt.Errorf("creating browser connection: %w", err)
		}
		s.driver = d
		s.syncer = NewSynchronizer(d, s.cfg.Sync, s.logger)
		s.exec = newExecutor(d, s.syncer, s.cfg.Sync.ActionTimeout, s.logger)
		s.logger.Info("Browser connection established.")
	}
	return s.exec, nil
}

// GoToURL navigates to target and blocks until the page settles. When a
// navigation rate limit is configured the call waits its turn first.
func (s *Session) GoToURL(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return err
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("navigation rate limit: %w", err)
		}
	}

	s.logger.Info("Navigating.", zap.String("url", target))
	if err := s.driver.Navigate(ctx, target); err != nil {
		return fmt.Errorf("navigating to %s: %w", target, err)
	}
	s.syncer.WaitForPageLoad(ctx)
	return nil
}

// SearchGoogle navigates to a Google results page for query.
func (s *Session) SearchGoogle(ctx context.Context, query string) error {
	return s.GoToURL(ctx, "https://www.google.com/search?q="+url.QueryEscape(query))
}

// GoBack steps one entry back in the session history and settles.
func (s *Session) GoBack(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return err
	}
	if err := s.driver.NavigateBack(ctx); err != nil {
		return fmt.Errorf("navigating back: %w", err)
	}
	s.syncer.WaitForPageLoad(ctx)
	return nil
}

// Refresh reloads the current page and settles.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return err
	}
	if err := s.driver.Reload(ctx); err != nil {
		return fmt.Errorf("reloading page: %w", err)
	}
	s.syncer.WaitForPageLoad(ctx)
	return nil
}

// RefreshState synchronizes with the page, indexes its clickable elements
// and returns a fresh snapshot. Previously issued indices are dead the
// moment this returns; only the new snapshot's indices are actionable.
func (s *Session) RefreshState(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return nil, err
	}

	s.syncer.WaitForPageLoad(ctx)

	pageHTML, err := s.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading page HTML: %w", err)
	}
	result, err := s.indexer.ClickableElements(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("indexing page elements: %w", err)
	}
	pageURL, title, err := s.driver.Location(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading page location: %w", err)
	}

	s.logger.Debug("State refreshed.", zap.String("url", pageURL), zap.Int("elements", len(result.Items)))
	return &State{
		URL:      pageURL,
		Title:    title,
		IndexMap: result.IndexMap,
		Items:    result.Items,
	}, nil
}

// ClickByIndex clicks the element state recorded under index. An index the
// snapshot never issued fails with *ElementNotFoundError before any browser
// interaction happens.
func (s *Session) ClickByIndex(ctx context.Context, state *State, index int) error {
	if state == nil {
		return errors.New("nil state snapshot, call RefreshState first")
	}
	if _, err := state.Locator(index); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	exec, err := s.connLocked(ctx)
	if err != nil {
		return err
	}
	return exec.ClickByIndex(ctx, state, index)
}

// InputTextByIndex types text into the element recorded under index,
// replacing any existing value. The same stale-index contract as
// ClickByIndex applies.
func (s *Session) InputTextByIndex(ctx context.Context, state *State, index int, text string) error {
	if state == nil {
		return errors.New("nil state snapshot, call RefreshState first")
	}
	if _, err := state.Locator(index); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	exec, err := s.connLocked(ctx)
	if err != nil {
		return err
	}
	return exec.InputTextByIndex(ctx, state, index, text)
}

// ExtractContent returns the visible text of the current page.
func (s *Session) ExtractContent(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return "", err
	}
	pageHTML, err := s.driver.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("reading page HTML: %w", err)
	}
	return extractText(pageHTML)
}

// CaptureScreenshot returns the current page as a base64-encoded image,
// either the viewport or the full scroll height.
func (s *Session) CaptureScreenshot(ctx context.Context, fullPage bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.connLocked(ctx); err != nil {
		return "", err
	}
	shot, err := s.driver.Screenshot(ctx, fullPage)
	if err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(shot), nil
}

// Close tears down the connection. Idempotent: closing an unconnected or
// already-closed session is a no-op. The session remains usable afterwards;
// the next operation creates a fresh connection.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.driver == nil {
		return nil
	}

	err := s.driver.Close(ctx)
	s.driver = nil
	s.syncer = nil
	s.exec = nil
	if s.onClose != nil {
		s.onClose(s.id)
	}
	if err != nil {
		s.logger.Warn("Browser teardown reported an error.", zap.Error(err))
		return fmt.Errorf("closing session: %w", err)
	}
	s.logger.Info("Session closed.")
	return nil
}
