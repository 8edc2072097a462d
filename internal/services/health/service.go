package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Status is the /health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Store    string `json:"store"`
	Sessions int    `json:"sessions"`
}

// Service encapsulates health-related checks.
type Service struct {
	db       Pinger
	sessions func() int
}

// NewService constructs a health service. A nil db means the in-memory store.
func NewService(db Pinger, sessions func() int) *Service {
	return &Service{db: db, sessions: sessions}
}

// Status reports whether the session store is reachable.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Store: "memory"}
	if s == nil {
		return st
	}
	if s.sessions != nil {
		st.Sessions = s.sessions()
	}
	if s.db == nil {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	st.Store = "postgres"
	if err := s.db.PingContext(ctx); err != nil {
		st.OK = false
		st.Store = "unavailable"
	}
	return st
}
