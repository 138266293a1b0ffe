// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE NEXT TO MONGO?
// MongoDB is the production store, but it needs a server. SQLite is embedded:
// the whole catalog lives in one file, and ":memory:" gives every test a fresh
// database with no infrastructure. Set STORE_DRIVER=sqlite to run on it.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/module-catalog/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out one repository per table.
type DB struct {
	conn *sql.DB

	users    *UserDB
	modules  *ModuleDB
	comments *CommentDB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/catalog.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
//
// CONNECTION POOL:
// sql.Open() does NOT actually open a connection, it just creates a pool
// manager. We call Ping to force an immediate connection and verify it works.
func New(ctx context.Context, dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is its own empty database, so the pool
	// must never grow past one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := newWithConn(conn)
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// connPragmas are applied by the driver to every connection the pool opens.
// A PRAGMA run through conn.ExecContext would only reach whichever single
// connection happened to execute it.
//
// WAL (Write-Ahead Logging) mode allows concurrent reads while a write is
// happening. busy_timeout makes concurrent writers wait for the lock instead
// of failing immediately with SQLITE_BUSY.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
}

// dsn turns a path into a modernc.org/sqlite DSN carrying connPragmas.
func dsn(dbPath string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	if dbPath == ":memory:" {
		return ":memory:?" + q.Encode()
	}
	return "file:" + dbPath + "?" + q.Encode()
}

// newWithConn wires the repositories around an open pool without touching
// the schema. Tests use it to run the repositories against sqlmock.
func newWithConn(conn *sql.DB) *DB {
	return &DB{
		conn:     conn,
		users:    &UserDB{conn: conn},
		modules:  &ModuleDB{conn: conn},
		comments: &CommentDB{conn: conn},
	}
}

func (db *DB) Users() repository.UserRepository       { return db.users }
func (db *DB) Modules() repository.ModuleRepository   { return db.modules }
func (db *DB) Comments() repository.CommentRepository { return db.comments }

// Ping reports whether the database file is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the connection pool. The context is unused; it is part of
// repository.Store because the Mongo client needs one to disconnect.
func (db *DB) Close(_ context.Context) error {
	return db.conn.Close()
}

// migrate creates the schema.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
//
// users.email is UNIQUE COLLATE NOCASE: the service lowercases emails before
// they get here, and the collation makes the index itself case-insensitive
// so the invariant holds even for rows written by other tools.
func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Favorites keep insertion order through the implicit rowid.
	// module_id has no foreign key: deleting a module leaves favorites and
	// comments pointing at it, same as the document store.
	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_favorites (
			user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			module_id TEXT NOT NULL,
			PRIMARY KEY (user_id, module_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user_favorites table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS modules (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			short_description TEXT NOT NULL DEFAULT '',
			description       TEXT NOT NULL DEFAULT '',
			content           TEXT NOT NULL DEFAULT '',
			study_credit      INTEGER NOT NULL CHECK (study_credit >= 1),
			location          TEXT NOT NULL DEFAULT '',
			level             TEXT NOT NULL DEFAULT '',
			learning_outcomes TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_modules_name ON modules(name);
	`)
	if err != nil {
		return fmt.Errorf("creating modules table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			module_id   TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			user_name   TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_module_created ON comments(module_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	// Errors that went through another wrapper (sqlmock in tests) only keep
	// the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
