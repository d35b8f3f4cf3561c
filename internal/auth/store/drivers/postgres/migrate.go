package postgres

import (
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/store/drivers/postgres/migrations"
)

// migrateURL rewrites postgres:// and postgresql:// to the pgx5:// scheme the
// golang-migrate pgx/v5 driver registers under.
func migrateURL(dsn string) string {
	if rest, found := strings.CutPrefix(dsn, "postgres://"); found {
		return "pgx5://" + rest
	}
	if rest, found := strings.CutPrefix(dsn, "postgresql://"); found {
		return "pgx5://" + rest
	}
	return dsn
}

// ApplyMigrations applies all pending up migrations over a dedicated
// connection opened from the store's DSN.
func (s *Store) ApplyMigrations() error {
	if s.dsn == "" {
		return oops.Code("MIGRATION_NO_DSN").Errorf("store was not opened from a DSN")
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return oops.Code("MIGRATION_SOURCE_FAILED").With("operation", "create migration source").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(s.dsn))
	if err != nil {
		_ = source.Close()
		return oops.Code("MIGRATION_INIT_FAILED").With("operation", "initialize migrator").Wrap(err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	return nil
}
