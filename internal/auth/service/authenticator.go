package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/httpx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// Authenticator resolves an Authorization header to a principal. Handlers
// call it first and decide themselves whether an anonymous principal may
// proceed.
type Authenticator struct {
	Sessions *SessionService
	Clients  ClientDirectory
	Clock    Clock

	// StoreTimeout bounds the store reads of one call. Zero disables it.
	StoreTimeout time.Duration
}

// Authenticate inspects the scheme of header and tries exactly that scheme:
//
//   - Bearer: the access token must belong to a session and be unexpired.
//   - Basic: the client id and secret must match a registered client.
//   - anything else, including no header: anonymous, no error.
//
// Failures are ErrUnauthenticated, or ErrTransient when the store could not
// answer. A failed Bearer attempt never falls back to Basic.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (domain.Principal, error) {
	p, _, err := a.resolve(ctx, header)
	return p, err
}

// AuthenticateBearer is Authenticate restricted to bearer tokens. It returns
// the session the token belongs to, as read during authentication. Anything
// other than a live bearer token is ErrUnauthenticated.
func (a *Authenticator) AuthenticateBearer(ctx context.Context, header string) (domain.Session, error) {
	p, sess, err := a.resolve(ctx, header)
	if err != nil {
		return domain.Session{}, err
	}
	if p.Kind != domain.PrincipalSession {
		return domain.Session{}, fmt.Errorf("%w: bearer token required", ErrUnauthenticated)
	}
	return sess, nil
}

func (a *Authenticator) resolve(ctx context.Context, header string) (domain.Principal, domain.Session, error) {
	authz := httpx.ParseAuthorization(header)
	if authz.Scheme == httpx.SchemeNone {
		return domain.AnonymousPrincipal(), domain.Session{}, nil
	}

	if a.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.StoreTimeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "auth.authenticate",
		trace.WithAttributes(attribute.String("auth.scheme", authz.Scheme.String())))
	defer span.End()

	var (
		p    domain.Principal
		sess domain.Session
		err  error
	)
	switch authz.Scheme {
	case httpx.SchemeBearer:
		sess, err = a.bearer(ctx, authz.Credentials)
		p = domain.SessionPrincipal(sess)
	case httpx.SchemeBasic:
		p, err = a.basic(ctx, authz)
	}

	authenticationsTotal.WithLabelValues(authz.Scheme.String(), outcome(err)).Inc()
	if err != nil {
		span.SetStatus(codes.Error, outcome(err))
		return domain.AnonymousPrincipal(), domain.Session{}, err
	}
	span.SetAttributes(attribute.String("auth.principal", p.Kind.String()))
	return p, sess, nil
}

func (a *Authenticator) bearer(ctx context.Context, token string) (domain.Session, error) {
	sess, ok, err := a.Sessions.GetSessionByAccessToken(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown access token", ErrUnauthenticated)
	}
	if sess.AccessToken.IsExpired(a.Clock.Now()) {
		slogx.FromContext(ctx).Debug("expired access token presented",
			slog.String("session_id", sess.ID.String()),
			slog.String("token_hint", cryptox.TokenHint(token)),
		)
		return domain.Session{}, fmt.Errorf("%w: access token expired", ErrUnauthenticated)
	}
	return sess, nil
}

func (a *Authenticator) basic(ctx context.Context, authz httpx.Authorization) (domain.Principal, error) {
	id, secret, err := authz.BasicCredentials()
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: malformed basic credentials", ErrUnauthenticated)
	}

	client, err := authenticateClient(ctx, a.Clients, id, secret)
	if errors.Is(err, ErrInvalidClient) {
		return domain.Principal{}, fmt.Errorf("%w: invalid client credentials", ErrUnauthenticated)
	}
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.ClientPrincipal(client.ID), nil
}
