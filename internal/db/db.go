// Package db opens the SQLCipher-encrypted agreements database.
package db

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MaxOpenConns is the maximum number of open connections.
	// SQLite is single-writer, so high connection counts are counterproductive.
	MaxOpenConns = 10

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns = 2
)

// DB wraps the sql.DB connection holding the agreements table.
type DB struct {
	db *sql.DB
}

// NewFromSQL wraps an existing sql.DB. The schema must already be applied.
func NewFromSQL(sqlDB *sql.DB) *DB {
	return &DB{db: sqlDB}
}

// SQL returns the underlying sql.DB for direct access.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Open opens (creating if needed) the encrypted database file at path.
// A wrong key fails here rather than on first use.
func Open(ctx context.Context, path string, key []byte) (*DB, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("database key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	// Format: file.db?_pragma_key=x'HEX_KEY'&_pragma_cipher_page_size=4096
	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", path, hex.EncodeToString(key))
	dsn = appendSQLiteParams(dsn, sqliteCommonParams())

	sqlDB, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open agreements database: %w", err)
	}
	sqlDB.SetMaxOpenConns(MaxOpenConns)
	sqlDB.SetMaxIdleConns(MaxIdleConns)

	if err := initialize(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return NewFromSQL(sqlDB), nil
}

// OpenInMemory opens a named in-memory encrypted database. Connections opened
// with the same name share one database until the last is closed.
func OpenInMemory(ctx context.Context, name string) (*DB, error) {
	if name == "" {
		name = "agreements-test"
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma_key=x'%s'&_pragma_cipher_page_size=4096", name, hex.EncodeToString(TestKey()))

	sqlDB, err := sql.Open(SQLiteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(MaxOpenConns)

	if err := applyFastSQLitePragmas(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply fast SQLite pragmas: %w", err)
	}
	if err := initialize(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return NewFromSQL(sqlDB), nil
}

func initialize(ctx context.Context, sqlDB *sql.DB) error {
	// Reading sqlite_master is the first page read, so a wrong key fails here.
	var tables int
	if err := sqlDB.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&tables); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("failed to verify agreements database: %w", err)
		}
		return fmt.Errorf("failed to verify agreements database (wrong key?): %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, AgreementsSchema); err != nil {
		return fmt.Errorf("failed to initialize agreements schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func sqliteCommonParams() string {
	// Production-safe defaults: WAL + NORMAL provides good throughput while preserving safety.
	return "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
}

func appendSQLiteParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}

func applyFastSQLitePragmas(ctx context.Context, sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA secure_delete=OFF",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, pragma); err != nil {
			return err
		}
	}
	return nil
}
