package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// CodeService issues and redeems single-use codes.
type CodeService struct {
	Store     store.Store
	Lifetimes Lifetimes
	Clock     Clock
}

// IssueCode stores a fresh code of kind for the (account, client) pair.
func (s *CodeService) IssueCode(ctx context.Context, kind domain.CodeKind, accountID, clientID idx.ID) (domain.AuthorizationCode, error) {
	if !kind.Valid() {
		return domain.AuthorizationCode{}, fmt.Errorf("%w: unknown code kind %q", ErrInvalidRequest, kind)
	}

	now := s.Clock.Now()
	code := domain.AuthorizationCode{
		ID:        idx.NewAt(now),
		AccountID: accountID,
		ClientID:  clientID,
		Token:     domain.GenerateToken(now, s.Lifetimes.CodeTTL(kind)),
		Kind:      kind,
		CreatedAt: now,
	}

	if err := s.Store.Codes().CreateCode(ctx, code); err != nil {
		return domain.AuthorizationCode{}, transient(err)
	}

	slogx.FromContext(ctx).Debug("code issued",
		slog.String("kind", string(kind)),
		slog.String("account_id", accountID.String()),
		slog.String("client_id", clientID.String()),
		slog.String("code_hint", cryptox.TokenHint(code.Token.Value)),
	)
	return code, nil
}

// ConsumeCode removes and returns the code of kind with the given value.
// Absent, already consumed and wrong-kind codes all report ErrNotFound.
// Expiry is left to the caller; the returned code may already be expired.
func (s *CodeService) ConsumeCode(ctx context.Context, kind domain.CodeKind, value string) (domain.AuthorizationCode, error) {
	if value == "" {
		return domain.AuthorizationCode{}, ErrNotFound
	}

	code, err := s.Store.Codes().ConsumeCode(ctx, kind, value)
	if errors.Is(err, store.ErrNotFound) {
		return domain.AuthorizationCode{}, ErrNotFound
	}
	if err != nil {
		return domain.AuthorizationCode{}, transient(err)
	}
	return code, nil
}
