package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// ClientDirectory resolves calling applications and checks their secrets.
type ClientDirectory interface {
	FindClient(ctx context.Context, id idx.ID) (domain.Client, bool, error)

	// VerifySecret reports whether secret authenticates client. Public
	// clients authenticate only with an empty secret.
	VerifySecret(client domain.Client, secret string) bool
}

type ClientService struct {
	Store store.Store
	Clock Clock
}

var _ ClientDirectory = (*ClientService)(nil)

func (s *ClientService) FindClient(ctx context.Context, id idx.ID) (domain.Client, bool, error) {
	return found(s.Store.Clients().GetClientByID(ctx, id))
}

func (s *ClientService) VerifySecret(client domain.Client, secret string) bool {
	if !client.IsConfidential() {
		return secret == ""
	}
	if secret == "" {
		return false
	}
	return cryptox.VerifyPassword(secret, client.SecretHash) == nil
}

// NewClient describes a client to register. A zero ID is generated, an
// empty Secret with Confidential set is generated too.
type NewClient struct {
	ID            idx.ID
	Name          string
	Secret        string
	Confidential  bool
	SingleSession bool
}

// CreateClient registers a client and returns it along with the plaintext
// secret, which is not recoverable afterwards.
func (s *ClientService) CreateClient(ctx context.Context, req NewClient) (domain.Client, string, error) {
	return createClient(ctx, s.Store, s.Clock, req)
}

func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return nil, transient(err)
	}
	return clients, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id idx.ID) error {
	err := s.Store.Clients().DeleteClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return transient(err)
	}
	slogx.FromContext(ctx).Info("client deleted", slog.String("client_id", id.String()))
	return nil
}

func createClient(ctx context.Context, st store.Store, clock Clock, req NewClient) (domain.Client, string, error) {
	l := slogx.FromContext(ctx)

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Client{}, "", ErrInvalidRequest
	}

	secret := req.Secret
	if secret == "" && req.Confidential {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return domain.Client{}, "", err
		}
		secret = generated
	}

	var secretHash string
	if secret != "" {
		h, err := cryptox.HashPassword(secret)
		if err != nil {
			l.Error("failed to hash client secret", "error", err)
			return domain.Client{}, "", err
		}
		secretHash = h
	}

	now := clock.Now()
	id := req.ID
	if id.IsZero() {
		id = idx.NewAt(now)
	}

	client := domain.Client{
		ID:            id,
		Name:          req.Name,
		SecretHash:    secretHash,
		SingleSession: req.SingleSession,
		CreatedAt:     now,
	}

	err := st.Clients().CreateClient(ctx, client)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Client{}, "", ErrClientExists
	}
	if err != nil {
		return domain.Client{}, "", transient(err)
	}

	l.Info("client created",
		slog.String("client_id", client.ID.String()),
		slog.String("name", client.Name),
		slog.Bool("has_secret", secretHash != ""),
		slog.Bool("single_session", client.SingleSession),
	)
	return client, secret, nil
}

// authenticateClient resolves rawID and checks secret. Every failure,
// including an unparseable id, is ErrInvalidClient. Unknown ids still pay
// one hash verification.
func authenticateClient(ctx context.Context, dir ClientDirectory, rawID, secret string) (domain.Client, error) {
	id, err := idx.Parse(rawID)
	if err != nil {
		return domain.Client{}, ErrInvalidClient
	}

	client, ok, err := dir.FindClient(ctx, id)
	if err != nil {
		return domain.Client{}, err
	}
	if !ok {
		_ = cryptox.VerifyPassword(secret, cryptox.DummyHash())
		return domain.Client{}, ErrInvalidClient
	}

	if !dir.VerifySecret(client, secret) {
		slogx.FromContext(ctx).Info("client authentication failed", slog.String("client_id", client.ID.String()))
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}
