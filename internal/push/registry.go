// Package push tracks realtime notification sessions per user and delivers
// best-effort messages to whoever is currently connected. Delivery is never
// load-bearing: a user without a live session simply misses the notice.
package push

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Conn is one live client session. Implementations must tolerate Send and
// Close racing each other.
type Conn interface {
	Send(payload any) error
	Close() error
}

// Registry maps users to their single active session.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]Conn
	log   *slog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns: make(map[uuid.UUID]Conn),
		log:   logger.With("component", "push_registry"),
	}
}

// Register binds conn as the user's active session. A previous session for
// the same user is closed and replaced; one session per user.
func (r *Registry) Register(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if old != nil {
		old.Close()
		r.log.Debug("replaced existing session", slog.String("user_id", userID.String()))
	}
}

// Unregister removes the user's session only if it is still the given conn.
// A stale disconnect arriving after a reconnect must not tear down the new
// session.
func (r *Registry) Unregister(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] == conn {
		delete(r.conns, userID)
	}
}

// Send delivers payload to the user's active session. Returns false when
// the user has no session or the write fails; a failed session is evicted.
func (r *Registry) Send(userID uuid.UUID, payload any) bool {
	r.mu.Lock()
	conn := r.conns[userID]
	r.mu.Unlock()

	if conn == nil {
		return false
	}

	if err := conn.Send(payload); err != nil {
		r.log.Debug("push send failed, evicting session",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		r.Unregister(userID, conn)
		conn.Close()
		return false
	}

	return true
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Shutdown closes every session and empties the registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[uuid.UUID]Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
