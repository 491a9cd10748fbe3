// Package postgres is the PostgreSQL-backed implementation of
// internal/storage.Repository.
//
// It manages connection pooling (via pgxpool, suitable for use through
// PgBouncer), a dedicated connection for LISTEN/NOTIFY progress events, and
// COPY-based batch ingestion for clauses and contradictions.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// DB wraps a pgxpool.Pool for normal queries (via PgBouncer) and an
// optional dedicated pgx.Conn for LISTEN/NOTIFY. Progress broadcasts are
// sent with pg_notify through the pool, and only when that dedicated
// connection is configured. The pipeline
// orchestrators (C10/C11) publish a notification on document_progress /
// session_progress each time they advance a stage; the HTTP layer that
// would consume these (out of scope) can LISTEN on the same channels
// instead of polling.
type DB struct {
	pool       *pgxpool.Pool
	notifyConn *pgx.Conn
	notifyDSN  string
	notifyMu   sync.Mutex

	listenChannels []string
	logger         *slog.Logger
}

// New creates a DB with a connection pool. poolDSN should point to
// PgBouncer (or directly to Postgres in dev). notifyDSN, if non-empty,
// should point directly to Postgres — LISTEN/NOTIFY does not survive a
// pooled transaction-mode connection.
func New(ctx context.Context, poolDSN, notifyDSN string, logger *slog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(poolDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse pool DSN: %w", err)
	}

	// Registration is best-effort: if pgvector hasn't been created yet
	// (e.g. before migrations run), log and proceed. Subsequent
	// connections succeed once the extension exists.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := pgxvector.RegisterTypes(ctx, conn); err != nil {
			logger.Debug("postgres: pgvector types not registered (extension may not exist yet)", "error", err)
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping pool: %w", err)
	}

	var notifyConn *pgx.Conn
	if notifyDSN != "" {
		notifyConn, err = pgx.Connect(ctx, notifyDSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: connect notify: %w", err)
		}
	}

	return &DB{
		pool:       pool,
		notifyConn: notifyConn,
		notifyDSN:  notifyDSN,
		logger:     logger,
	}, nil
}

// Pool returns the underlying connection pool, for callers (e.g. migrations)
// that need direct access.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close shuts down the connection pool and notify connection.
func (db *DB) Close(ctx context.Context) {
	db.pool.Close()
	db.notifyMu.Lock()
	defer db.notifyMu.Unlock()
	if db.notifyConn != nil {
		if err := db.notifyConn.Close(ctx); err != nil {
			db.logger.Warn("postgres: close notify connection", "error", err)
		}
	}
}

// notify publishes payload on channel using pg_notify, tolerating the
// absence of a notify connection (e.g. test environments that only wire
// the pool). Transient failures are logged, not returned — progress
// broadcasts are best-effort and never block the pipeline.
func (db *DB) notify(ctx context.Context, channel, payload string) {
	db.notifyMu.Lock()
	conn := db.notifyConn
	db.notifyMu.Unlock()
	if conn == nil {
		return
	}
	if _, err := db.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		db.logger.Debug("postgres: notify failed", "channel", channel, "error", err)
	}
}

// reconnectNotify re-establishes the dedicated LISTEN/NOTIFY connection with
// jittered exponential backoff, re-subscribing to all tracked channels on
// success. Must be called with db.notifyMu held.
func (db *DB) reconnectNotify(ctx context.Context) error {
	if db.notifyDSN == "" {
		return fmt.Errorf("postgres: no notify DSN configured")
	}

	if db.notifyConn != nil {
		_ = db.notifyConn.Close(ctx)
		db.notifyConn = nil
	}

	const maxRetries = 5
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := range maxRetries {
		if attempt > 0 {
			jitter := time.Duration(rand.Int64N(int64(backoff / 2))) //nolint:gosec // jitter doesn't need crypto-strength randomness
			sleep := backoff + jitter

			db.logger.Info("postgres: reconnecting notify", "attempt", attempt+1, "backoff", sleep)

			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}

		conn, err := pgx.Connect(ctx, db.notifyDSN)
		if err != nil {
			lastErr = err
			db.logger.Warn("postgres: notify reconnect attempt failed", "attempt", attempt+1, "error", err)
			continue
		}

		resubOK := true
		for _, ch := range db.listenChannels {
			if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ch}.Sanitize()); err != nil {
				_ = conn.Close(ctx)
				lastErr = err
				db.logger.Warn("postgres: re-listen failed during reconnect", "channel", ch, "error", err)
				resubOK = false
				break
			}
		}
		if !resubOK {
			continue
		}

		db.notifyConn = conn
		db.logger.Info("postgres: notify connection restored", "attempt", attempt+1, "channels", db.listenChannels)
		return nil
	}

	return fmt.Errorf("postgres: notify reconnect failed after %d attempts: %w", maxRetries, lastErr)
}
