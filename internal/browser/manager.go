// internal/browser/manager.go
package browser

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sbenkov/aviator/internal/config"
)

// Manager owns the sessions of one process. Sessions register on creation
// and deregister when closed; Shutdown sweeps whatever is still live.
type Manager struct {
	cfg    *config.Config
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger.Named("browser"),
		sessions: make(map[string]*Session),
	}
}

// NewSession creates and registers a session. The browser launches lazily
// on the session's first use.
func (m *Manager) NewSession() *Session {
	s := NewSession(m.cfg, m.logger)
	s.onClose = m.forget

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.logger.Debug("Session registered.", zap.String("session_id", s.ID()))
	return s
}

// Session looks up a registered session by id.
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Shutdown closes every live session concurrently. Teardown failures are
// logged and swallowed so one stuck browser cannot block the sweep.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	m.logger.Info("Shutting down sessions.", zap.Int("count", len(live)))

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range live {
		s := s
		g.Go(func() error {
			if err := s.Close(gctx); err != nil {
				m.logger.Warn("Session teardown failed.", zap.String("session_id", s.ID()), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
