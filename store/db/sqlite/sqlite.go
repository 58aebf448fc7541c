// Package sqlite implements the store driver on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/AntonV666/neyro-secretar/internal/profile"
	"github.com/AntonV666/neyro-secretar/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	// SQLite handles one writer at a time; a small pool is enough for a
	// single-user assistant.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var count int
	stmt := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('note', 'reminder')`
	if err := d.db.QueryRowContext(ctx, stmt).Scan(&count); err != nil {
		return false, err
	}
	return count == 2, nil
}
