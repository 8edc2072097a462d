package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Backend stores string values per session and key.
type Backend interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// MemoryBackend is an in-memory Backend.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string // sessionID -> key -> value
}

// NewMemoryBackend constructs a MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[sessionID][key]
	return val, ok, nil
}

func (m *MemoryBackend) Set(ctx context.Context, sessionID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.data[sessionID]
	if !ok {
		entries = make(map[string]string)
		m.data[sessionID] = entries
	}
	entries[key] = value
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, sessionID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.data[sessionID]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(m.data, sessionID)
	}
	return nil
}

// PGBackend stores entries in the session_entries table.
type PGBackend struct {
	DB  *sql.DB
	Now func() time.Time
}

func (p *PGBackend) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := p.DB.QueryRowContext(ctx,
		`SELECT value FROM session_entries WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select session entry: %w", err)
	}
	return value, true, nil
}

func (p *PGBackend) Set(ctx context.Context, sessionID, key, value string) error {
	_, err := p.DB.ExecContext(ctx, `
INSERT INTO session_entries (session_id, key, value, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		sessionID, key, value, p.now(),
	)
	if err != nil {
		return fmt.Errorf("upsert session entry: %w", err)
	}
	return nil
}

func (p *PGBackend) Delete(ctx context.Context, sessionID, key string) error {
	_, err := p.DB.ExecContext(ctx,
		`DELETE FROM session_entries WHERE session_id = $1 AND key = $2`,
		sessionID, key,
	)
	if err != nil {
		return fmt.Errorf("delete session entry: %w", err)
	}
	return nil
}

// PurgeBefore removes entries not written since cutoff and returns how many went.
func (p *PGBackend) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := p.DB.ExecContext(ctx, `DELETE FROM session_entries WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge session entries: %w", err)
	}
	return res.RowsAffected()
}

func (p *PGBackend) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*PGBackend)(nil)
)
