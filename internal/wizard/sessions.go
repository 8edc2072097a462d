package wizard

import (
	"context"
	"sync"
	"time"

	"jobtailor/internal/persist"
	"jobtailor/internal/shared/telemetry"
)

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions holds one Controller per session id. A controller is built on
// first use from the persisted documents; dropping it is a page reload.
type Sessions struct {
	mu      sync.Mutex
	store   *persist.Store
	deps    Deps
	entries map[string]*entry
	now     func() time.Time
}

// NewSessions builds controllers with deps over store. A nil store keeps
// nothing across reloads.
func NewSessions(store *persist.Store, deps Deps) *Sessions {
	return &Sessions{
		store:   store,
		deps:    deps,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns the controller for id, restoring it if needed.
func (s *Sessions) Get(ctx context.Context, id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.lastSeen = s.now()
		return e.ctrl
	}
	var p Persister
	if s.store != nil {
		p = s.store.Session(id)
	}
	ctrl := NewController(ctx, id, p, s.deps)
	s.entries[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	telemetry.Info("wizard.session_restored", map[string]any{
		"session_id": id,
		"has_resume": ctrl.state.Resume != nil,
		"has_job":    ctrl.state.Job != nil,
	})
	return ctrl
}

// Reload drops the in-memory controller of id. Results are lost; persisted
// documents are restored on the next Get.
func (s *Sessions) Reload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Sweep drops controllers idle for longer than maxIdle and returns how many
// were removed. Busy controllers are kept.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if st := e.ctrl.Snapshot(); st.busy() {
			continue
		}
		delete(s.entries, id)
		removed++
	}
	return removed
}

// Len reports how many controllers are live.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				telemetry.Info("wizard.sessions_swept", map[string]any{"removed": n, "live": s.Len()})
			}
		}
	}
}
