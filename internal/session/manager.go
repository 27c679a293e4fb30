package session

import (
	"log/slog"
	"sync"

	"kiosk/internal/cart"
	"kiosk/internal/catalog"
	"kiosk/internal/interpreter"
	"kiosk/internal/listening"
	"kiosk/internal/llm"
)

// Manager owns the live sessions. Each kiosk gets its own cart and listening
// machine; the catalog and intent provider are shared.
type Manager struct {
	provider  llm.Provider
	catalog   *catalog.Catalog
	speaker   Speaker
	listenCfg listening.Config
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(provider llm.Provider, cat *catalog.Catalog, speaker Speaker, listenCfg listening.Config, logger *slog.Logger) *Manager {
	return &Manager{
		provider:  provider,
		catalog:   cat,
		speaker:   speaker,
		listenCfg: listenCfg,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	interp := interpreter.New(m.provider, m.catalog, cart.NewStore(), m.logger)
	s := New(id, interp, m.speaker, m.listenCfg, m.logger)
	m.sessions[id] = s
	m.logger.Info("session created", "session_id", id)
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove tears a session down, cancelling its timers.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}
