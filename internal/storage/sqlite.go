package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQL drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// DB wraps a SQL connection holding projects and page history.
type DB struct {
	conn    *sql.DB
	driver  string
	dataDir string // root directory for exports and snapshot files
}

// New creates a new DB, opening (or creating) the SQLite file at dbPath.
func New(dbPath, dataDir string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	return setup(conn, DriverSQLite, dataDir)
}

// Open connects to a Postgres or MySQL server (or a SQLite DSN) and migrates it.
func Open(driver, dsn, dataDir string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		return New(dsn, dataDir)
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return setup(conn, driver, dataDir)
}

func setup(conn *sql.DB, driver, dataDir string) (*DB, error) {
	db := &DB{conn: conn, driver: driver, dataDir: dataDir}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DataDir returns the root data directory.
func (db *DB) DataDir() string {
	return db.dataDir
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the SQL driver name.
func (db *DB) Driver() string {
	return db.driver
}

// rebind rewrites ? placeholders into $n for Postgres.
func (db *DB) rebind(q string) string {
	if db.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert-or-update statement keyed on keyCol.
func (db *DB) upsert(table, keyCol string, cols ...string) string {
	all := append([]string{keyCol}, cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), marks)

	sets := make([]string, len(cols))
	if db.driver == DriverMySQL {
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return db.rebind(q + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	}
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return db.rebind(q + fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET ", keyCol) + strings.Join(sets, ", "))
}

func (db *DB) migrate() error {
	text, ts := "TEXT", "TIMESTAMP"
	indexIfNotExists := "IF NOT EXISTS "
	if db.driver == DriverMySQL {
		text, ts = "LONGTEXT", "DATETIME(6)"
		indexIfNotExists = ""
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			project_key VARCHAR(191) PRIMARY KEY,
			data ` + text + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		// One row per checkpoint of a page
		`CREATE TABLE IF NOT EXISTS history_nodes (
			id VARCHAR(64) PRIMARY KEY,
			page_id VARCHAR(64) NOT NULL,
			parent_id VARCHAR(64),
			label VARCHAR(255) NOT NULL,
			snapshot ` + text + ` NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history_state (
			page_id VARCHAR(64) PRIMARY KEY,
			current_node_id VARCHAR(64) NOT NULL
		)`,
		`CREATE INDEX ` + indexIfNotExists + `idx_history_page ON history_nodes(page_id)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// MySQL has no CREATE INDEX IF NOT EXISTS
			if strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}
