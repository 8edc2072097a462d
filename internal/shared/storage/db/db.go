package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"jobtailor/internal/shared/telemetry"
)

// Profile selects pool defaults for a kind of process.
type Profile string

const (
	ProfileServer Profile = "server"
	ProfileLambda Profile = "lambda"
	ProfileCLI    Profile = "cli"
)

const defaultPingTimeout = 5 * time.Second

// Options are the pool settings applied to a connection.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var profiles = map[Profile]Options{
	// Lambda serves one request per container.
	ProfileLambda: {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, ConnMaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	ProfileServer: {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: defaultPingTimeout},
	ProfileCLI:    {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: defaultPingTimeout},
}

type override struct {
	key   string
	apply func(o *Options, raw string) error
}

var overrides = []override{
	{"DB_MAX_OPEN_CONNS", intField(func(o *Options) *int { return &o.MaxOpenConns })},
	{"DB_MAX_IDLE_CONNS", intField(func(o *Options) *int { return &o.MaxIdleConns })},
	{"DB_CONN_MAX_LIFETIME", durationField(func(o *Options) *time.Duration { return &o.ConnMaxLifetime })},
	{"DB_CONN_MAX_IDLE_TIME", durationField(func(o *Options) *time.Duration { return &o.ConnMaxIdleTime })},
	{"DB_PING_TIMEOUT", durationField(func(o *Options) *time.Duration { return &o.PingTimeout })},
}

var openDB = sql.Open

// RuntimeProfile returns ProfileLambda inside AWS Lambda and ProfileServer otherwise.
func RuntimeProfile() Profile {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return ProfileLambda
	}
	return ProfileServer
}

// OptionsFor returns the defaults of p with DB_* environment overrides applied.
// Unparsable values are logged and ignored.
func OptionsFor(p Profile) Options {
	opts, ok := profiles[p]
	if !ok {
		opts = profiles[ProfileServer]
	}
	for _, ov := range overrides {
		raw := strings.TrimSpace(os.Getenv(ov.key))
		if raw == "" {
			continue
		}
		if err := ov.apply(&opts, raw); err != nil {
			telemetry.Warn("db.env_invalid", map[string]any{"key": ov.key, "value": raw, "error": err.Error()})
		}
	}
	return opts
}

// Connect opens a pgx-backed pool, applies opts and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configure(pool, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", map[string]any{
		"max_open":  opts.MaxOpenConns,
		"max_idle":  opts.MaxIdleConns,
		"lifetime":  opts.ConnMaxLifetime.String(),
		"idle_time": opts.ConnMaxIdleTime.String(),
	})
	return pool, nil
}

var shared struct {
	mu   sync.Mutex
	pool *sql.DB
}

// Shared returns one pool per process, connecting on first use. A failed
// connect is not cached; the next call tries again.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.pool != nil {
		return shared.pool, nil
	}
	pool, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	shared.pool = pool
	return pool, nil
}

func configure(pool *sql.DB, opts Options) {
	fallback := profiles[ProfileServer]
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = fallback.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = fallback.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = fallback.ConnMaxLifetime
	}
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(opts.MaxIdleConns)
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func intField(field func(*Options) *int) func(*Options, string) error {
	return func(o *Options, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*field(o) = v
		return nil
	}
}

func durationField(field func(*Options) *time.Duration) func(*Options, string) error {
	return func(o *Options, raw string) error {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*field(o) = v
		return nil
	}
}
