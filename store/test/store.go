package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AntonV666/neyro-secretar/internal/profile"
	"github.com/AntonV666/neyro-secretar/store"
	"github.com/AntonV666/neyro-secretar/store/db"
)

// NewTestingStore opens a fresh sqlite store in a per-test directory and
// applies the schema.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: "sqlite",
		DSN:    filepath.Join(dir, "neyro_test.db"),
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close store: %v", err)
		}
	})
	return ts
}
