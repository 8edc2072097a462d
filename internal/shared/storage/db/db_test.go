package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withMockDB(t *testing.T, pingErr error) (sqlmock.Sqlmock, *int) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	exp := mock.ExpectPing()
	if pingErr != nil {
		exp.WillReturnError(pingErr)
		mock.ExpectClose()
	}
	opens := 0
	prev := openDB
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		opens++
		if driverName != "pgx" {
			t.Fatalf("unexpected driver %q", driverName)
		}
		return conn, nil
	}
	t.Cleanup(func() { openDB = prev })
	return mock, &opens
}

func resetShared(t *testing.T) {
	t.Helper()
	shared.mu.Lock()
	shared.pool = nil
	shared.mu.Unlock()
	t.Cleanup(func() {
		shared.mu.Lock()
		shared.pool = nil
		shared.mu.Unlock()
	})
}

func TestOptionsForAppliesOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFor(ProfileServer)
	want := Options{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 20 * time.Minute, ConnMaxIdleTime: 45 * time.Second, PingTimeout: time.Second}
	if opts != want {
		t.Fatalf("expected %+v, got %+v", want, opts)
	}
}

func TestOptionsForIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	opts := OptionsFor(ProfileLambda)
	if opts != profiles[ProfileLambda] {
		t.Fatalf("expected lambda defaults, got %+v", opts)
	}
}

func TestRuntimeProfile(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	if RuntimeProfile() != ProfileServer {
		t.Fatalf("expected server profile")
	}
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "jobtailor-api")
	if RuntimeProfile() != ProfileLambda {
		t.Fatalf("expected lambda profile")
	}
}

func TestConnectAppliesPoolSize(t *testing.T) {
	mock, _ := withMockDB(t, nil)

	pool, err := Connect(context.Background(), "postgres://x", Options{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := pool.Stats().MaxOpenConnections; got != 4 {
		t.Fatalf("expected MaxOpenConnections=4, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectClosesOnPingFailure(t *testing.T) {
	mock, _ := withMockDB(t, errors.New("connection refused"))

	if _, err := Connect(context.Background(), "postgres://x", OptionsFor(ProfileCLI)); err == nil {
		t.Fatalf("expected ping failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", Options{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestSharedReusesPool(t *testing.T) {
	resetShared(t)
	_, opens := withMockDB(t, nil)

	first, err := Shared(context.Background(), "postgres://x", OptionsFor(ProfileLambda))
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	second, err := Shared(context.Background(), "postgres://x", OptionsFor(ProfileLambda))
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	if first != second || *opens != 1 {
		t.Fatalf("expected one pool, opened %d times", *opens)
	}
}

func TestSharedRetriesAfterFailure(t *testing.T) {
	resetShared(t)
	withMockDB(t, errors.New("cold start"))

	if _, err := Shared(context.Background(), "postgres://x", Options{}); err == nil {
		t.Fatalf("expected first call to fail")
	}

	withMockDB(t, nil)
	pool, err := Shared(context.Background(), "postgres://x", Options{})
	if err != nil || pool == nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}
