// Package postgres implements the relational store (§6) over
// jmoiron/sqlx and lib/pq, following the teacher's "one *sqlx.DB wrapped
// by small per-concern repositories" layout rather than a single fat
// DAO.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps a *sqlx.DB with the pool settings the batch orchestrator
// needs (one connection per in-flight trial transaction, modest idle
// pool).
type DB struct {
	*sqlx.DB
}

// Open connects to Postgres and verifies connectivity with a bounded
// ping, the way the teacher opens its exchange REST clients with a
// startup health probe rather than discovering a bad DSN on first use.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &DB{db}, nil
}

// Ping satisfies httpapi.HealthChecker.
func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}
