package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

var ErrBootstrapInvalidSeed = errors.New("bootstrap client seed needs an id and a name")

// BootstrapService makes sure the clients every deployment relies on (the
// game build and the web front end) exist before the server takes traffic.
type BootstrapService struct {
	Store store.Store
	Clock Clock
}

// EnsureClients creates each seed that does not exist yet, all in one
// transaction. Existing clients are left untouched, secrets included. It
// returns how many clients were created.
func (s *BootstrapService) EnsureClients(ctx context.Context, seeds []NewClient) (int, error) {
	l := slogx.FromContext(ctx)

	for _, seed := range seeds {
		if seed.ID.IsZero() || seed.Name == "" {
			return 0, ErrBootstrapInvalidSeed
		}
	}

	created := 0
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, seed := range seeds {
			_, err := tx.Clients().GetClientByID(ctx, seed.ID)
			if err == nil {
				l.Debug("seed client already present", slog.String("client_id", seed.ID.String()))
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return transient(err)
			}

			if _, _, err := createClient(ctx, tx, s.Clock, seed); err != nil {
				l.Error("failed to create seed client",
					slog.String("client_id", seed.ID.String()),
					slog.Any("error", err),
				)
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		l.Info("seed clients created", slog.Int("count", created))
	}
	return created, nil
}
