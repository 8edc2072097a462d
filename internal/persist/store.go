package persist

import (
	"context"
	"encoding/json"

	"jobtailor/internal/documents"
	"jobtailor/internal/shared/telemetry"
)

// Storage keys. The suffix versions the JSON shape.
const (
	KeyResume = "jobtailor_cv_v1"
	KeyJob    = "jobtailor_jd_v1"
)

// Store hands out per-session views over a Backend.
type Store struct {
	Backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{Backend: backend}
}

// Session returns the view of one browser session.
func (s *Store) Session(id string) *Session {
	return &Session{backend: s.Backend, id: id}
}

// Session reads and writes the persisted documents of one browser session.
// Reads never fail: unreadable entries are logged and treated as absent.
type Session struct {
	backend Backend
	id      string
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) LoadResume(ctx context.Context) *documents.ResumeDocument {
	var doc documents.ResumeDocument
	if !s.load(ctx, KeyResume, &doc) {
		return nil
	}
	return &doc
}

// SaveResume writes doc, or removes the entry when doc is nil or has no content.
func (s *Session) SaveResume(ctx context.Context, doc *documents.ResumeDocument) error {
	if doc == nil || doc.Empty() {
		return s.backend.Delete(ctx, s.id, KeyResume)
	}
	return s.save(ctx, KeyResume, doc)
}

func (s *Session) LoadJob(ctx context.Context) *documents.JobPosting {
	var job documents.JobPosting
	if !s.load(ctx, KeyJob, &job) {
		return nil
	}
	return &job
}

// SaveJob writes job, or removes the entry when job is nil.
func (s *Session) SaveJob(ctx context.Context, job *documents.JobPosting) error {
	if job == nil {
		return s.backend.Delete(ctx, s.id, KeyJob)
	}
	return s.save(ctx, KeyJob, job)
}

func (s *Session) load(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.backend.Get(ctx, s.id, key)
	if err != nil {
		telemetry.Error("persist.read_failed", map[string]any{
			"session_id": s.id,
			"key":        key,
			"error":      err.Error(),
		})
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		telemetry.Error("persist.decode_failed", map[string]any{
			"session_id": s.id,
			"key":        key,
			"error":      err.Error(),
		})
		return false
	}
	return true
}

func (s *Session) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, s.id, key, string(raw))
}
