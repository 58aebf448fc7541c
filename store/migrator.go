package store

import (
	"context"
	"embed"
	"log/slog"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema applied to fresh databases.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema on first run. An already
// initialized database is left untouched.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "check database initialization")
	}
	if initialized {
		return nil
	}

	buf, err := migrationFS.ReadFile("migration/" + s.profile.Driver + "/" + LatestSchemaFileName)
	if err != nil {
		return errors.Wrapf(err, "read latest schema for driver %q", s.profile.Driver)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "apply latest schema")
	}

	slog.Info("database schema initialized", "driver", s.profile.Driver)
	return nil
}
