// internal/store/sqlstore/dialect.go
//
// SQL dialects for the store.
// Responsibilities:
//   - Driver name and DSN per backend (sqlite pragmas, mysql parseTime).
//   - Placeholder rewriting (? → $n for postgres).
//   - Insert-or-ignore syntax and per-backend pool configuration.

package sqlstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect isolates the SQL differences between the supported backends.
type Dialect interface {
	// Name is the value accepted by DB_TYPE.
	Name() string
	// DriverName returns the driver name for sql.Open.
	DriverName() string
	// DSN builds the data source name from a file path or URL.
	DSN(path, url string) (string, error)
	// RewriteQuery converts ? placeholders where the driver needs another syntax.
	RewriteQuery(query string) string
	// InsertIgnore returns an INSERT that silently skips rows whose key exists.
	InsertIgnore(table string, cols ...string) string
	ConfigureConnection(db *sql.DB) error
	// MigrationsSubdir names the directory under migrations/ for this backend.
	MigrationsSubdir() string
	CreateMigrationsTableQuery() string
}

// DialectFor resolves a DB_TYPE value.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return sqliteDialect{}, nil
	case "postgres", "postgresql":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", name)
	}
}

func insertQuery(verb, table string, cols []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("%s INTO %s (%s) VALUES (%s)", verb, table, strings.Join(cols, ", "), marks)
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

/* -------------------------------- SQLite -------------------------------- */

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite3" }

// DSN ensures the parent directory exists for paths like ./data/app.db and
// opens with a busy timeout, WAL journaling and IMMEDIATE transactions so
// writers queue instead of failing mid-transaction.
func (sqliteDialect) DSN(path, _ string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("sqlite: DB_PATH is empty")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on", nil
}

func (sqliteDialect) RewriteQuery(query string) string { return query }

func (sqliteDialect) InsertIgnore(table string, cols ...string) string {
	return insertQuery("INSERT OR IGNORE", table, cols)
}

// ConfigureConnection limits SQLite to a single connection: one writer at a
// time is all the file lock allows anyway.
func (sqliteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	return nil
}

func (sqliteDialect) MigrationsSubdir() string { return "sqlite" }

func (sqliteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`
}

/* ------------------------------- Postgres ------------------------------- */

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(_, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("postgres: DATABASE_URL is empty")
	}
	return url, nil
}

func (postgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

func (postgresDialect) InsertIgnore(table string, cols ...string) string {
	return insertQuery("INSERT", table, cols) + " ON CONFLICT DO NOTHING"
}

func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (postgresDialect) MigrationsSubdir() string { return "postgres" }

func (postgresDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`
}

/* --------------------------------- MySQL -------------------------------- */

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

// DSN validates the URL with the driver's parser and forces parseTime.
func (mysqlDialect) DSN(_, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("mysql: DATABASE_URL is empty")
	}
	cfg, err := mysql.ParseDSN(url)
	if err != nil {
		return "", fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (mysqlDialect) RewriteQuery(query string) string { return query }

func (mysqlDialect) InsertIgnore(table string, cols ...string) string {
	return insertQuery("INSERT IGNORE", table, cols)
}

func (mysqlDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (mysqlDialect) MigrationsSubdir() string { return "mysql" }

func (mysqlDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS _migrations (name VARCHAR(255) PRIMARY KEY)`
}
