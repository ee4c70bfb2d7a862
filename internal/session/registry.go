package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-console/internal/view"
	appErrors "github.com/noah-isme/student-console/pkg/errors"
)

// Session is one browser's live screen.
type Session struct {
	ID         string
	Controller *view.Controller
	Flash      *view.Flash

	lastSeen time.Time
}

// ControllerFactory builds a controller that reports to the given flash queue.
type ControllerFactory func(flash *view.Flash) *view.Controller

// Registry maps session ids to live controllers, hydrating from the store on a
// miss and evicting sessions that have been idle for longer than the TTL.
type Registry struct {
	store   Store
	factory ControllerFactory
	ttl     time.Duration
	metrics Observer
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs a registry.
func NewRegistry(store Store, factory ControllerFactory, ttl time.Duration, metrics Observer, logger *zap.Logger) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		store:    store,
		factory:  factory,
		ttl:      ttl,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the live session for id, rebuilding it from the store or
// starting an empty one when needed.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	fresh := r.hydrate(ctx, id)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}
	fresh.lastSeen = r.now()
	r.sessions[id] = fresh
	r.reportActive()
	return fresh
}

func (r *Registry) hydrate(ctx context.Context, id string) *Session {
	snap, err := r.store.Load(ctx, id)
	switch {
	case err == nil:
		r.observe("load", "hit")
	case errors.Is(err, appErrors.ErrSessionNotFound):
		r.observe("load", "miss")
	default:
		r.observe("load", "error")
		r.logger.Warn("session load failed, starting fresh", zap.String("session_id", id), zap.Error(err))
	}

	flash := view.NewFlash()
	if snap != nil {
		flash = view.NewFlash(snap.Notices...)
	}
	ctrl := r.factory(flash)
	if snap != nil {
		ctrl.Restore(snap.State)
	}
	return &Session{ID: id, Controller: ctrl, Flash: flash}
}

// Persist saves the session's current state and pending notices.
func (r *Registry) Persist(ctx context.Context, s *Session) error {
	snap := Snapshot{
		State:   s.Controller.Snapshot(),
		Notices: s.Flash.Pending(),
		SavedAt: r.now().UTC(),
	}
	if err := r.store.Save(ctx, s.ID, snap, r.ttl); err != nil {
		r.observe("save", "error")
		r.logger.Warn("session save failed", zap.String("session_id", s.ID), zap.Error(err))
		return err
	}
	r.observe("save", "ok")
	return nil
}

// Forget drops a session from memory and from the store.
func (r *Registry) Forget(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.reportActive()
	r.mu.Unlock()
	if err := r.store.Delete(ctx, id); err != nil {
		r.observe("delete", "error")
		return err
	}
	r.observe("delete", "ok")
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for at least the TTL and returns how many went.
// Evicted sessions can still be rebuilt from the store until it expires them.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if !s.lastSeen.After(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.reportActive()
	}
	return evicted
}

// Run sweeps on every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

// tick evicts idle live sessions and purges expired snapshots from stores that
// keep them until asked.
func (r *Registry) tick() {
	if n := r.Sweep(); n > 0 {
		r.logger.Debug("evicted idle sessions", zap.Int("count", n))
	}
	if p, ok := r.store.(Purger); ok {
		if n := p.Purge(); n > 0 {
			r.logger.Debug("purged expired session snapshots", zap.Int("count", n))
		}
	}
}

func (r *Registry) observe(op, result string) {
	if r.metrics != nil {
		r.metrics.ObserveSessionStore(op, result)
	}
}

// reportActive must be called with r.mu held.
func (r *Registry) reportActive() {
	if r.metrics != nil {
		r.metrics.SetActiveSessions(len(r.sessions))
	}
}
