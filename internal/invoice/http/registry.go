package invoicehttp

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-invoice/internal/invoice"
)

var (
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("invoice session not found")
	// ErrSessionLimit is returned when the registry is full.
	ErrSessionLimit = errors.New("too many open invoice sessions")
)

// SessionGauge receives the number of open sessions.
type SessionGauge interface {
	SetActiveSessions(n int)
}

// Registry keeps the open editing sessions in memory, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*invoice.Session
	max      int
	factory  func() *invoice.Session
	gauge    SessionGauge
}

// NewRegistry builds a registry holding at most max sessions; max <= 0 means
// unbounded. factory creates each new session.
func NewRegistry(max int, factory func() *invoice.Session, gauge SessionGauge) *Registry {
	if factory == nil {
		factory = func() *invoice.Session { return invoice.NewSession(invoice.SessionOptions{}) }
	}
	return &Registry{
		sessions: make(map[uuid.UUID]*invoice.Session),
		max:      max,
		factory:  factory,
		gauge:    gauge,
	}
}

// Create opens a session on a blank draft.
func (r *Registry) Create() (uuid.UUID, *invoice.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.sessions) >= r.max {
		return uuid.Nil, nil, ErrSessionLimit
	}
	id := uuid.New()
	session := r.factory()
	r.sessions[id] = session
	r.report()
	return id, session, nil
}

// Get returns the session with id.
func (r *Registry) Get(id uuid.UUID) (*invoice.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete discards the session with id.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.report()
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) report() {
	if r.gauge != nil {
		r.gauge.SetActiveSessions(len(r.sessions))
	}
}
