package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/ut4master/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// connectBackoffBase is the first wait between connection attempts. Waits
// double up to connectBackoffCap.
const (
	connectBackoffBase = 250 * time.Millisecond
	connectBackoffCap  = 5 * time.Second
)

// OpenStore opens the configured driver and waits until the database
// answers a ping. A postgres container that is still starting is retried
// with exponential backoff; a store that stays down fails startup.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		st, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		st, err = sqlite.NewStore(dsn)
	default:
		return nil, oops.Code("CONFIG_INVALID").Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, oops.Code("DB_OPEN_FAILED").With("driver", cfg.DatabaseDriver).Wrap(err)
	}

	attempts := cfg.StoreConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1,
		retry.WithCappedDuration(connectBackoffCap, retry.NewExponential(connectBackoffBase)))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()

		if err := st.Ping(pingCtx); err != nil {
			logger.Warn("store not reachable yet",
				slog.String("driver", cfg.DatabaseDriver),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = st.Close()
		slogx.LogError(logger, "store unreachable", err, slog.Int("attempts", attempt))
		return nil, oops.Code("DB_UNREACHABLE").With("driver", cfg.DatabaseDriver).Wrap(err)
	}

	logger.Info("store connected", slog.String("driver", cfg.DatabaseDriver), slog.Int("attempts", attempt))
	return st, nil
}

// Migrate applies pending migrations to st.
func Migrate(st store.Store, logger *slog.Logger) error {
	if err := st.ApplyMigrations(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	logger.Info("database migrations applied successfully")
	return nil
}
