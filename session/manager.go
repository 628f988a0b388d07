package session

import (
	"context"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/user-registry/internal/uuidutil"
	"github.com/hairizuan-noorazman/user-registry/logger"
)

// Manager manages view-state sessions with automatic cleanup.
type Manager struct {
	store       *Store
	duration    time.Duration
	searchDelay time.Duration
	logger      logger.Logger
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewManager creates a new session manager. Sessions live for duration and
// settle search text after searchDelay.
func NewManager(duration, searchDelay time.Duration, log logger.Logger) *Manager {
	return &Manager{
		store:       NewStore(),
		duration:    duration,
		searchDelay: searchDelay,
		logger:      log,
		stopCh:      make(chan struct{}),
	}
}

// Duration returns how long a new session lives.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// Create creates a new, empty view state.
func (m *Manager) Create(ctx context.Context) *State {
	st := NewState(uuidutil.NewString(), time.Now(), m.duration, m.searchDelay)
	m.store.Set(st)

	m.logger.Debug(ctx, "session created", logger.Fields{
		"session_id": st.ID,
	})

	return st
}

// Transient returns an empty view state that is not stored.
func (m *Manager) Transient() *State {
	return NewState(uuidutil.NewString(), time.Now(), m.duration, m.searchDelay)
}

// Len returns the number of stored sessions.
func (m *Manager) Len() int {
	return m.store.Len()
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*State, error) {
	return m.store.Get(id)
}

// Delete deletes a session by ID.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.store.Delete(id)
	m.logger.Debug(ctx, "session deleted", logger.Fields{
		"session_id": id,
	})
}

// StartCleanup starts a background goroutine that periodically removes
// expired sessions.
func (m *Manager) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				removed := m.store.Cleanup()
				if removed > 0 {
					m.logger.Info(context.Background(), "cleaned up expired sessions", logger.Fields{
						"removed_count":   removed,
						"remaining_count": m.Len(),
					})
				}
			case <-m.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine. It is safe to call more than once.
func (m *Manager) StopCleanup() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}
