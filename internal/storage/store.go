// Package storage provides durable CRUD against the SQLite database for
// both schema profiles. All operations take a context and go through an
// explicitly passed store handle; there is no package-level connection.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wealthbook/internal/core"

	_ "modernc.org/sqlite"
)

// Profile selects one of the two schema designs.
type Profile string

const (
	// ProfileLedger is the normalized users/accounts/assets/transactions schema.
	ProfileLedger Profile = "ledger"
	// ProfileTracker is the flat per-category stocks/mutual_funds/insurances schema.
	ProfileTracker Profile = "tracker"
)

func open(dbPath string, profile Profile) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be on for the ledger profile's cascade and
	// set-null rules; harmless for the tracker profile.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath, profile); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// mapErr translates driver errors into the domain error kinds.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return core.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return core.ErrDuplicate
	}
	return err
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
