// Package database opens sqlx pools from a resolved config.Database.  The
// default driver is go-sql-driver/mysql, which also works with MariaDB and
// Cockroach when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	DSN(db, base)        – applies the database name to a base DSN.
//	Open(ctx, db, base)  – opens, sizes, and pings a pool.
//	Configure(sqlDB, db) – wraps an existing *sql.DB (tests, custom dialers).
//
// The base DSN carries host, credentials, and flags; config/application.toml
// only names the adapter, the database, and the pool size.  Callers should
// Close() the returned *sqlx.DB when no longer needed.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/appconf/internal/config"
)

// AdapterMySQL is the only adapter this package can open.
const AdapterMySQL = "mysql"

// DSN returns base with its database name replaced by db.Name.
func DSN(db config.Database, base string) (string, error) {
	if db.Adapter != AdapterMySQL {
		return "", fmt.Errorf("database adapter %q not supported", db.Adapter)
	}
	cfg, err := mysql.ParseDSN(base)
	if err != nil {
		return "", fmt.Errorf("parse base dsn: %w", err)
	}
	cfg.DBName = db.Name
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// Open returns a pool for db, sized by db.Pool, and pings it before
// returning so callers can fail fast during bootstrap.
func Open(ctx context.Context, db config.Database, base string) (*sqlx.DB, error) {
	dsn, err := DSN(db, base)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(db.Adapter, dsn)
	if err != nil {
		return nil, err
	}
	pool, err := Configure(ctx, sqlDB, db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return pool, nil
}

// Configure applies db's pool size to an open handle and pings it.
func Configure(ctx context.Context, sqlDB *sql.DB, db config.Database) (*sqlx.DB, error) {
	pool := int(db.Pool)
	if pool < 1 {
		pool = 1
	}
	idle := pool / 3
	if idle < 1 {
		idle = 1
	}

	x := sqlx.NewDb(sqlDB, db.Adapter)
	x.SetMaxOpenConns(pool)
	x.SetMaxIdleConns(idle)
	x.SetConnMaxLifetime(30 * time.Minute)

	if err := x.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", db.Name, err)
	}
	return x, nil
}
