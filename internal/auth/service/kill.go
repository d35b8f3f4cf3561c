package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// KillType selects which sibling sessions a kill request removes.
type KillType string

const (
	KillOthers                     KillType = "OTHERS"
	KillOthersAccountClient        KillType = "OTHERS_ACCOUNT_CLIENT"
	KillOthersAccountClientService KillType = "OTHERS_ACCOUNT_CLIENT_SERVICE"
)

func ParseKillType(s string) (KillType, error) {
	switch k := KillType(strings.ToUpper(strings.TrimSpace(s))); k {
	case KillOthers, KillOthersAccountClient, KillOthersAccountClientService:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown killType %q", ErrInvalidRequest, s)
}

// KillSession logs out the session holding accessToken. Callers may only
// kill sessions of their own account, or, for a system session, of their
// own client. An unknown token is already logged out and succeeds.
func (s *SessionService) KillSession(ctx context.Context, caller domain.Principal, accessToken string) error {
	if caller.Kind != domain.PrincipalSession {
		return ErrUnauthenticated
	}

	target, ok, err := s.GetSessionByAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	allowed := target.AccountID == caller.AccountID
	if !caller.HasAccount() {
		allowed = target.ClientID == caller.ClientID
	}
	if !allowed {
		return ErrForbidden
	}

	if err := s.RemoveSession(ctx, target.ID); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("session killed",
		slog.String("session_id", target.ID.String()),
		slog.String("by_session_id", caller.SessionID.String()),
	)
	return nil
}

// KillOtherSessions removes the caller's sibling sessions and keeps the
// caller's own. For account sessions every kill type stays within the
// caller's account on the caller's client. A system session with KillOthers
// clears every other session on its client.
func (s *SessionService) KillOtherSessions(ctx context.Context, caller domain.Principal, kind KillType) (int64, error) {
	if caller.Kind != domain.PrincipalSession {
		return 0, ErrUnauthenticated
	}

	if kind == KillOthers && !caller.HasAccount() {
		return s.RemoveOtherSessions(ctx, caller.ClientID, caller.SessionID)
	}
	return s.RemoveOtherAccountSessions(ctx, caller.AccountID, caller.ClientID, caller.SessionID)
}
