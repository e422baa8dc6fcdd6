package sqlite

import (
	"context"
	"testing"

	"github.com/electwix/stmtpool/internal/engine"
)

func TestEngine_ConnectionPool(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	pool := e.ConnectionPool()

	if pool.MaxOpenConns != sqliteMaxOpenConns {
		t.Errorf("MaxOpenConns = %d, want %d", pool.MaxOpenConns, sqliteMaxOpenConns)
	}
	if pool.MaxIdleConns != sqliteMaxIdleConns {
		t.Errorf("MaxIdleConns = %d, want %d", pool.MaxIdleConns, sqliteMaxIdleConns)
	}
	if pool.ConnMaxLifetime != sqliteConnMaxLifetime {
		t.Errorf("ConnMaxLifetime = %v, want %v", pool.ConnMaxLifetime, sqliteConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime != sqliteConnMaxIdleTime {
		t.Errorf("ConnMaxIdleTime = %v, want %v", pool.ConnMaxIdleTime, sqliteConnMaxIdleTime)
	}
	if sqliteMaxIdleConns > sqliteMaxOpenConns {
		t.Error("sqliteMaxIdleConns should not exceed sqliteMaxOpenConns")
	}
}

func TestEngine_Identity(t *testing.T) {
	e, _ := New()

	if got := e.Name(); got != "sqlite" {
		t.Errorf("Name() = %q, want sqlite", got)
	}
	if got := e.DriverName(); got != "sqlite" {
		t.Errorf("DriverName() = %q, want sqlite", got)
	}
	if got := e.DefaultDriver(); got != "modernc.org/sqlite" {
		t.Errorf("DefaultDriver() = %q, want modernc.org/sqlite", got)
	}
}

func TestEngine_SupportsFeature(t *testing.T) {
	e, _ := New()

	tests := []struct {
		feature engine.Feature
		want    bool
	}{
		{engine.FeaturePreparedStatements, true},
		{engine.FeatureReturning, true},
		{engine.FeatureCallableStatements, false},
		{engine.FeatureScrollableCursors, false},
		{engine.FeatureUpdatableCursors, false},
		{engine.FeatureHoldableCursors, false},
		{engine.Feature(999), false},
	}

	for _, tt := range tests {
		t.Run(tt.feature.String(), func(t *testing.T) {
			if got := e.SupportsFeature(tt.feature); got != tt.want {
				t.Errorf("SupportsFeature(%v) = %v, want %v", tt.feature, got, tt.want)
			}
		})
	}
}

func TestOpenInMemory(t *testing.T) {
	e, _ := New()
	ctx := context.Background()

	db, err := engine.Open(ctx, e, ":memory:", engine.ConnectionPoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		t.Fatalf("SELECT 1: %v", err)
	}
	if one != 1 {
		t.Errorf("SELECT 1 = %d", one)
	}
}
