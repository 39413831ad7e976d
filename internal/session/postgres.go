// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the live PostgreSQL session behind the shell: the connection,
// the open transaction and the selected database. Every lifecycle rule (no database
// switch inside a transaction, one transaction at a time) is enforced here so the
// shell itself never has to inspect or cache session state.
package session

import (
	"context"
	"time"

	shellerrors "pgshell/cli/internal/errors"
	"pgshell/cli/internal/logging"
	"pgshell/cli/internal/sqlexec"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgconn/ctxwatch"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pterm/pterm"
)

// Config describes how to reach the database.
type Config struct {
	// DSN is a normalized postgres:// connection string.
	DSN string
	// Database overrides the database named in DSN when non-empty.
	Database string
	// ConnectTimeout bounds dialing and the initial handshake. Zero means no limit
	// beyond the caller's context.
	ConnectTimeout time.Duration
}

// Postgres is a single-connection session over a pgx pool.
// The pool holds exactly one acquired connection for the whole session because a
// transaction must stay on one backend. Postgres is not safe for concurrent use.
type Postgres struct {
	log *pterm.Logger
	cfg Config

	pool *pgxpool.Pool
	conn *pgxpool.Conn
	tx   pgx.Tx

	database      string
	serverVersion string
}

// NewPostgres creates a disconnected session.
func NewPostgres(logger *pterm.Logger) *Postgres {
	return &Postgres{log: logger}
}

// Connect opens the session. It fails if a session is already open.
func (p *Postgres) Connect(ctx context.Context, cfg Config) error {
	if p.IsConnected() {
		return shellerrors.New(shellerrors.Session, "Already connected.")
	}
	p.drop()

	pool, conn, err := open(ctx, cfg, cfg.Database)
	if err != nil {
		return err
	}
	p.cfg = cfg
	return p.adopt(ctx, pool, conn)
}

// Disconnect closes the session, rolling back any open transaction.
func (p *Postgres) Disconnect(ctx context.Context) error {
	if !p.IsConnected() {
		p.drop()
		return shellerrors.New(shellerrors.Session, "Not connected.")
	}
	if p.tx != nil {
		if err := p.tx.Rollback(ctx); err != nil {
			p.log.Warn("rollback on disconnect failed", p.log.Args("err", err))
		}
		p.tx = nil
	}
	p.release()
	p.log.Debug("disconnected")
	return nil
}

// IsConnected reports whether a session is open. A session whose backend
// connection was closed underneath it is reported as disconnected.
func (p *Postgres) IsConnected() bool {
	return p.conn != nil && !p.conn.Conn().IsClosed()
}

// InTransaction reports whether an explicit transaction is open.
func (p *Postgres) InTransaction() bool {
	return p.tx != nil
}

// Database returns the name of the currently selected database, or "" when disconnected.
func (p *Postgres) Database() string {
	return p.database
}

// ServerVersion returns the server_version setting reported at connect time.
func (p *Postgres) ServerVersion() string {
	return p.serverVersion
}

// Run executes a statement with the given named parameters, inside the open
// transaction when there is one.
func (p *Postgres) Run(ctx context.Context, statement string, params map[string]any) (*sqlexec.Result, error) {
	if !p.IsConnected() {
		return nil, shellerrors.ErrNotConnected
	}

	var q sqlexec.Querier = p.conn
	if p.tx != nil {
		q = p.tx
	}
	return sqlexec.Run(ctx, q, statement, params)
}

// Begin opens an explicit transaction.
func (p *Postgres) Begin(ctx context.Context) error {
	if !p.IsConnected() {
		return shellerrors.ErrNotConnected
	}
	if p.tx != nil {
		return shellerrors.New(shellerrors.Session, "There is already an open transaction.")
	}

	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return err
	}
	p.tx = tx
	p.log.Debug("transaction opened")
	return nil
}

// Commit commits the open transaction.
func (p *Postgres) Commit(ctx context.Context) error {
	if !p.IsConnected() {
		return shellerrors.ErrNotConnected
	}
	if p.tx == nil {
		return shellerrors.New(shellerrors.Session, "There is no open transaction to commit.")
	}

	// pgx closes the transaction whether or not COMMIT succeeds.
	tx := p.tx
	p.tx = nil
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.log.Debug("transaction committed")
	return nil
}

// Rollback rolls back the open transaction.
func (p *Postgres) Rollback(ctx context.Context) error {
	if !p.IsConnected() {
		return shellerrors.ErrNotConnected
	}
	if p.tx == nil {
		return shellerrors.New(shellerrors.Session, "There is no open transaction to rollback.")
	}

	tx := p.tx
	p.tx = nil
	if err := tx.Rollback(ctx); err != nil {
		return err
	}
	p.log.Debug("transaction rolled back")
	return nil
}

// UseDatabase reconnects to another database on the same server.
// An empty name selects the database the session was configured with.
// The current connection is kept if the new one cannot be established, and
// server errors (such as a missing database) are returned unchanged.
func (p *Postgres) UseDatabase(ctx context.Context, name string) error {
	if !p.IsConnected() {
		return shellerrors.ErrNotConnected
	}
	if p.tx != nil {
		return shellerrors.New(shellerrors.Session, "There is an open transaction. Commit or roll back before switching database.")
	}
	if name == "" {
		name = p.cfg.Database
	}

	pool, conn, err := open(ctx, p.cfg, name)
	if err != nil {
		return err
	}
	oldPool, oldConn := p.pool, p.conn
	if err := p.adopt(ctx, pool, conn); err != nil {
		return err
	}
	oldConn.Release()
	oldPool.Close()
	return nil
}

// open creates a pool for cfg with database overridden when non-empty and
// acquires the session connection from it.
func open(ctx context.Context, cfg Config, database string) (*pgxpool.Pool, *pgxpool.Conn, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if database != "" {
		pcfg.ConnConfig.Database = database
	}
	pcfg.MaxConns = 1
	pcfg.ConnConfig.BuildContextWatcherHandler = cancelRequestHandler
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, conn, nil
}

// Cancelling a statement's context asks the server to cancel the query so the
// backend survives. The connection is only torn down if the server has not
// answered within cancelDeadlineDelay.
const cancelDeadlineDelay = 5 * time.Second

func cancelRequestHandler(conn *pgconn.PgConn) ctxwatch.Handler {
	return &pgconn.CancelRequestContextWatcherHandler{
		Conn:          conn,
		DeadlineDelay: cancelDeadlineDelay,
	}
}

// adopt makes pool/conn the live session and records server metadata.
func (p *Postgres) adopt(ctx context.Context, pool *pgxpool.Pool, conn *pgxpool.Conn) error {
	var database, version string
	err := conn.QueryRow(ctx, "SELECT current_database(), current_setting('server_version')").Scan(&database, &version)
	if err != nil {
		conn.Release()
		pool.Close()
		return err
	}

	p.pool = pool
	p.conn = conn
	p.database = database
	p.serverVersion = version
	p.log.Debug("connected", p.log.Args(
		"dsn", logging.Mask(p.cfg.DSN),
		"database", database,
		"server_version", version,
	))
	return nil
}

// drop discards the state of a session whose connection is already gone.
func (p *Postgres) drop() {
	if p.conn == nil {
		return
	}
	p.log.Debug("backend connection lost, discarding session")
	p.tx = nil
	p.release()
}

func (p *Postgres) release() {
	if p.conn != nil {
		p.conn.Release()
		p.conn = nil
	}
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	p.database = ""
	p.serverVersion = ""
}
