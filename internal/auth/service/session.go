package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// SessionService owns session records. Lookups return (session, found, err):
// absence is found == false with a nil error, and err is only ever a
// transient store failure.
type SessionService struct {
	Store     store.Store
	Lifetimes Lifetimes
	Clock     Clock
}

// CreateSession persists a new session with fresh tokens.
func (s *SessionService) CreateSession(ctx context.Context, accountID, clientID idx.ID, method domain.CreationMethod) (domain.Session, error) {
	now := s.Clock.Now()
	sess := domain.Session{
		ID:             idx.NewAt(now),
		AccountID:      accountID,
		ClientID:       clientID,
		AccessToken:    domain.GenerateToken(now, s.Lifetimes.AccessToken),
		RefreshToken:   domain.GenerateToken(now, s.Lifetimes.RefreshToken),
		CreationMethod: method,
		CreatedAt:      now,
	}

	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.Session{}, transient(err)
	}

	slogx.FromContext(ctx).Info("session created",
		slog.String("session_id", sess.ID.String()),
		slog.String("account_id", accountID.String()),
		slog.String("client_id", clientID.String()),
		slog.String("method", string(method)),
	)
	return sess, nil
}

func (s *SessionService) GetSessionByID(ctx context.Context, id idx.ID) (domain.Session, bool, error) {
	return found(s.Store.Sessions().GetSessionByID(ctx, id))
}

func (s *SessionService) GetSessionByAccessToken(ctx context.Context, token string) (domain.Session, bool, error) {
	if token == "" {
		return domain.Session{}, false, nil
	}
	return found(s.Store.Sessions().GetSessionByAccessToken(ctx, token))
}

func (s *SessionService) GetSessionByRefreshToken(ctx context.Context, token string) (domain.Session, bool, error) {
	if token == "" {
		return domain.Session{}, false, nil
	}
	return found(s.Store.Sessions().GetSessionByRefreshToken(ctx, token))
}

// GetSessionByAccountAndClient returns the newest session for the pair.
func (s *SessionService) GetSessionByAccountAndClient(ctx context.Context, accountID, clientID idx.ID) (domain.Session, bool, error) {
	return found(s.Store.Sessions().GetSessionByAccountAndClient(ctx, accountID, clientID))
}

// UpdateSession writes sess over the stored row with the same id, provided
// nobody else updated it since sess was read. A lost race, or a session
// removed in the meantime, reports ErrSessionChanged.
func (s *SessionService) UpdateSession(ctx context.Context, sess domain.Session) (domain.Session, error) {
	updated, err := s.Store.Sessions().UpdateSession(ctx, sess)
	switch {
	case errors.Is(err, store.ErrConflict):
		return domain.Session{}, ErrSessionChanged
	case err != nil:
		return domain.Session{}, transient(err)
	}
	return updated, nil
}

// RotateTokens replaces both tokens of sess, keeping its identity.
func (s *SessionService) RotateTokens(ctx context.Context, sess domain.Session) (domain.Session, error) {
	now := s.Clock.Now()
	next := sess
	next.AccessToken = domain.GenerateToken(now, s.Lifetimes.AccessToken)
	next.RefreshToken = domain.GenerateToken(now, s.Lifetimes.RefreshToken)
	return s.UpdateSession(ctx, next)
}

// RemoveSession deletes the session. Removing an absent id succeeds.
func (s *SessionService) RemoveSession(ctx context.Context, id idx.ID) error {
	if err := s.Store.Sessions().DeleteSession(ctx, id); err != nil {
		return transient(err)
	}
	return nil
}

// RemoveOtherSessions deletes every session on clientID except keepID.
func (s *SessionService) RemoveOtherSessions(ctx context.Context, clientID, keepID idx.ID) (int64, error) {
	n, err := s.Store.Sessions().DeleteOtherSessions(ctx, clientID, keepID)
	if err != nil {
		return 0, transient(err)
	}
	sessionsEvictedTotal.Add(float64(n))
	return n, nil
}

// RemoveOtherAccountSessions deletes the account's sessions on clientID
// except keepID. Other accounts' sessions on the client are untouched.
func (s *SessionService) RemoveOtherAccountSessions(ctx context.Context, accountID, clientID, keepID idx.ID) (int64, error) {
	n, err := s.Store.Sessions().DeleteOtherAccountSessions(ctx, accountID, clientID, keepID)
	if err != nil {
		return 0, transient(err)
	}
	sessionsEvictedTotal.Add(float64(n))
	return n, nil
}

// found converts a store lookup into an optional result.
func found[T any](v T, err error) (T, bool, error) {
	var zero T
	switch {
	case errors.Is(err, store.ErrNotFound):
		return zero, false, nil
	case err != nil:
		return zero, false, transient(err)
	}
	return v, true, nil
}
