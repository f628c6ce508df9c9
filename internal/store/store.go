package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repos hands out repositories bound to a querier. Store and Tx embed it so
// the same repository code runs inside and outside transactions.
type repos struct {
	q       querier
	dialect string
}

func (r repos) Profiles() ProfileRepo       { return &profileRepo{r} }
func (r repos) Roadmaps() RoadmapRepo       { return &roadmapRepo{r} }
func (r repos) Lessons() LessonRepo         { return &lessonRepo{r} }
func (r repos) Completions() CompletionRepo { return &completionRepo{r} }
func (r repos) Progress() ProgressRepo      { return &progressRepo{r} }
func (r repos) Events() EventRepo           { return &eventRepo{r} }

func (r repos) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

// Store owns the database handle and provides access to repositories.
type Store struct {
	repos
	db *sql.DB
}

// Tx is a Store scoped to one database transaction.
type Tx struct {
	repos
}

// Open connects to the database at dsn and runs auto-migration.
// postgres:// and postgresql:// DSNs use pgx; anything else is treated as
// a SQLite path or file: URI.
func Open(dsn string) (*Store, error) {
	driverName, d := "sqlite", dialect.SQLite
	if isPostgres(dsn) {
		driverName, d = "pgx", dialect.Postgres
	} else {
		dsn = withPragmas(dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d == dialect.SQLite {
		// One connection keeps transactions and shared-cache memory
		// databases consistent.
		db.SetMaxOpenConns(1)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrate, err := schema.NewMigrate(entsql.OpenDB(d, db))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{repos: repos{q: db, dialect: d}, db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. Only the repositories of tx may be
// used inside fn.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Tx{repos: repos{q: sqlTx, dialect: s.dialect}}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// sqlitePragmas are applied by the driver on every new connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// withPragmas appends the connection pragmas to a SQLite DSN.
func withPragmas(dsn string) string {
	params := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		params[i] = "_pragma=" + p
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PATHWISE_DB environment variable
// 2. $XDG_DATA_HOME/pathwise/pathwise.db
// 3. ~/.local/share/pathwise/pathwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PATHWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "pathwise", "pathwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a database path if it doesn't
// exist. Postgres DSNs and file: URIs are left alone.
func EnsureDir(path string) error {
	if isPostgres(path) || strings.HasPrefix(path, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// MemoryDSN returns a DSN for a named, shared-cache in-memory SQLite
// database. Distinct names give independent databases.
func MemoryDSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared"
}
