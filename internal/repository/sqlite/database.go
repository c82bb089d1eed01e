// Package sqlite is the embedded store: a single SQLite file, for
// single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dom/tickify/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Open opens the SQLite database at path and runs migrations. Use ":memory:"
// for a throwaway database.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	return OpenWithMigrations(ctx, path, migrations, "migrations")
}

// OpenWithMigrations opens the database at path and applies the goose
// migrations in dir of fsys.
func OpenWithMigrations(ctx context.Context, path string, fsys fs.FS, dir string) (*sqlx.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite has a single writer, and an in-memory database lives only as
	// long as its one connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(ctx, db, fsys, dir); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlx.NewDb(db, "sqlite"), nil
}

func dsn(path string) string {
	params := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if path == ":memory:" {
		return "file::memory:?" + params
	}
	return "file:" + path + "?" + params + "&_pragma=journal_mode(WAL)"
}

func runMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func NewRepositories(db *sqlx.DB) *repository.Repositories {
	return &repository.Repositories{
		Account:   NewAccountRepository(db),
		Checklist: NewChecklistRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
