package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

type GrantType string

const (
	GrantPassword          GrantType = "password"
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantExchangeCode      GrantType = "exchange_code"
	GrantRefreshToken      GrantType = "refresh_token"
	GrantClientCredentials GrantType = "client_credentials"
)

func (g GrantType) Valid() bool {
	switch g {
	case GrantPassword, GrantAuthorizationCode, GrantExchangeCode, GrantRefreshToken, GrantClientCredentials:
		return true
	}
	return false
}

// GrantRequest is a token endpoint request after transport decoding. Only
// the fields of the selected grant type are read.
type GrantRequest struct {
	GrantType    GrantType
	ClientID     string
	ClientSecret string

	Username string // password; also matched against email addresses
	Password string

	Code         string // authorization_code
	ExchangeCode string // exchange_code
	RefreshToken string // refresh_token
}

// Grant is the outcome of a successful exchange.
type Grant struct {
	Session domain.Session
	Client  domain.Client

	// DisplayName is the account's username, empty for system sessions.
	DisplayName string
}

// TokenService turns grant requests into sessions. Every grant first
// authenticates the client, then checks the grant's own credential, then
// creates or refreshes a session.
type TokenService struct {
	Sessions *SessionService
	Codes    *CodeService
	Accounts AccountDirectory
	Clients  ClientDirectory
	Clock    Clock

	// StoreTimeout bounds a whole exchange. Zero disables it.
	StoreTimeout time.Duration
}

// Exchange dispatches req by grant type.
func (s *TokenService) Exchange(ctx context.Context, req GrantRequest) (Grant, error) {
	if s.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.StoreTimeout)
		defer cancel()
	}

	label := string(req.GrantType)
	if !req.GrantType.Valid() {
		label = "unsupported"
	}

	ctx, span := tracer.Start(ctx, "auth.grant",
		trace.WithAttributes(
			attribute.String("oauth.grant_type", label),
			attribute.String("oauth.client_id", req.ClientID),
		))
	defer span.End()

	grant, err := s.exchange(ctx, req)
	grantsTotal.WithLabelValues(label, outcome(err)).Inc()

	l := slogx.FromContext(ctx)
	if err != nil {
		span.SetStatus(codes.Error, outcome(err))
		if errors.Is(err, ErrTransient) {
			slogx.LogError(l, "grant failed on store", err, slog.String("grant_type", label))
		} else {
			l.Info("grant rejected",
				slog.String("grant_type", label),
				slog.String("client_id", req.ClientID),
				slog.String("reason", outcome(err)),
			)
		}
		return Grant{}, err
	}

	span.SetAttributes(attribute.String("auth.session_id", grant.Session.ID.String()))
	return grant, nil
}

func (s *TokenService) exchange(ctx context.Context, req GrantRequest) (Grant, error) {
	switch req.GrantType {
	case GrantPassword:
		return s.ExchangePassword(ctx, req.ClientID, req.ClientSecret, req.Username, req.Password)
	case GrantAuthorizationCode:
		return s.ExchangeAuthorizationCode(ctx, req.ClientID, req.ClientSecret, req.Code)
	case GrantExchangeCode:
		return s.ExchangeExchangeCode(ctx, req.ClientID, req.ClientSecret, req.ExchangeCode)
	case GrantRefreshToken:
		return s.ExchangeRefreshToken(ctx, req.ClientID, req.ClientSecret, req.RefreshToken)
	case GrantClientCredentials:
		return s.ExchangeClientCredentials(ctx, req.ClientID, req.ClientSecret)
	case "":
		return Grant{}, fmt.Errorf("%w: grant_type is required", ErrInvalidRequest)
	default:
		return Grant{}, ErrUnsupportedGrantType
	}
}

// ExchangePassword implements the password grant. username may also be an
// email address. Unknown accounts and wrong passwords are indistinguishable
// to the caller, in outcome and in timing.
func (s *TokenService) ExchangePassword(ctx context.Context, clientID, clientSecret, username, password string) (Grant, error) {
	client, err := authenticateClient(ctx, s.Clients, clientID, clientSecret)
	if err != nil {
		return Grant{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Grant{}, fmt.Errorf("%w: username and password are required", ErrInvalidRequest)
	}

	account, ok, err := findByLogin(ctx, s.Accounts, username)
	if err != nil {
		return Grant{}, err
	}
	if !s.Accounts.VerifyPassword(account, password) || !ok {
		return Grant{}, ErrInvalidGrant
	}

	sess, err := s.issue(ctx, client, account.ID, domain.MethodPassword)
	if err != nil {
		return Grant{}, err
	}

	if err := s.Accounts.RecordLogin(ctx, account.ID); err != nil {
		slogx.LogError(slogx.FromContext(ctx), "failed to record login", err,
			slog.String("account_id", account.ID.String()))
	}

	return Grant{Session: sess, Client: client, DisplayName: account.Username}, nil
}

// ExchangeAuthorizationCode redeems an authorization code.
func (s *TokenService) ExchangeAuthorizationCode(ctx context.Context, clientID, clientSecret, code string) (Grant, error) {
	return s.redeemCode(ctx, clientID, clientSecret, domain.CodeKindAuthorization, code)
}

// ExchangeExchangeCode redeems an exchange code, typically minted by the
// web front end and handed to the game.
func (s *TokenService) ExchangeExchangeCode(ctx context.Context, clientID, clientSecret, code string) (Grant, error) {
	return s.redeemCode(ctx, clientID, clientSecret, domain.CodeKindExchange, code)
}

// redeemCode consumes the code before anything else can fail, so a retry of
// a request that timed out may find the code already gone. That retry gets
// ErrInvalidGrant, same as any other loser of the race.
func (s *TokenService) redeemCode(ctx context.Context, clientID, clientSecret string, kind domain.CodeKind, value string) (Grant, error) {
	client, err := authenticateClient(ctx, s.Clients, clientID, clientSecret)
	if err != nil {
		return Grant{}, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return Grant{}, fmt.Errorf("%w: code is required", ErrInvalidRequest)
	}

	code, err := s.Codes.ConsumeCode(ctx, kind, value)
	if errors.Is(err, ErrNotFound) {
		return Grant{}, ErrInvalidGrant
	}
	if err != nil {
		return Grant{}, err
	}
	if code.Token.IsExpired(s.Clock.Now()) {
		slogx.FromContext(ctx).Info("expired code presented",
			slog.String("kind", string(kind)),
			slog.String("code_hint", cryptox.TokenHint(value)),
		)
		return Grant{}, ErrInvalidGrant
	}

	account, ok, err := s.Accounts.FindByID(ctx, code.AccountID)
	if err != nil {
		return Grant{}, err
	}
	if !ok {
		return Grant{}, ErrInvalidGrant
	}

	sess, err := s.issue(ctx, client, account.ID, domain.MethodExchange)
	if err != nil {
		return Grant{}, err
	}
	return Grant{Session: sess, Client: client, DisplayName: account.Username}, nil
}

// ExchangeRefreshToken replaces both tokens of the session holding
// refreshToken. The session keeps its id, account, client and creation
// method. An expired refresh token leaves the session untouched.
func (s *TokenService) ExchangeRefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (Grant, error) {
	client, err := authenticateClient(ctx, s.Clients, clientID, clientSecret)
	if err != nil {
		return Grant{}, err
	}

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return Grant{}, fmt.Errorf("%w: refresh_token is required", ErrInvalidRequest)
	}

	sess, ok, err := s.Sessions.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		return Grant{}, err
	}
	if !ok || sess.ClientID != client.ID || sess.RefreshToken.IsExpired(s.Clock.Now()) {
		return Grant{}, ErrInvalidGrant
	}

	var displayName string
	if !sess.IsSystem() {
		account, ok, err := s.Accounts.FindByID(ctx, sess.AccountID)
		if err != nil {
			return Grant{}, err
		}
		if !ok {
			return Grant{}, ErrInvalidGrant
		}
		displayName = account.Username
	}

	refreshed, err := s.Sessions.RotateTokens(ctx, sess)
	if errors.Is(err, ErrSessionChanged) {
		return Grant{}, ErrInvalidGrant
	}
	if err != nil {
		return Grant{}, err
	}

	slogx.FromContext(ctx).Info("session refreshed",
		slog.String("session_id", refreshed.ID.String()),
		slog.Int64("revision", refreshed.Revision),
	)
	return Grant{Session: refreshed, Client: client, DisplayName: displayName}, nil
}

// ExchangeClientCredentials issues a session with no account behind it.
// Only confidential clients may use it.
func (s *TokenService) ExchangeClientCredentials(ctx context.Context, clientID, clientSecret string) (Grant, error) {
	client, err := authenticateClient(ctx, s.Clients, clientID, clientSecret)
	if err != nil {
		return Grant{}, err
	}
	if !client.IsConfidential() {
		return Grant{}, ErrInvalidClient
	}

	sess, err := s.issue(ctx, client, idx.Zero, domain.MethodClientCredentials)
	if err != nil {
		return Grant{}, err
	}
	return Grant{Session: sess, Client: client}, nil
}

// issue creates the session and then, for single-session clients, evicts
// the rest. Eviction strictly follows the create so the client is never left
// without a session. An eviction failure is logged and the grant still
// succeeds; the next issue for the client evicts again.
func (s *TokenService) issue(ctx context.Context, client domain.Client, accountID idx.ID, method domain.CreationMethod) (domain.Session, error) {
	sess, err := s.Sessions.CreateSession(ctx, accountID, client.ID, method)
	if err != nil {
		return domain.Session{}, err
	}

	if client.SingleSession {
		n, err := s.Sessions.RemoveOtherSessions(ctx, client.ID, sess.ID)
		if err != nil {
			slogx.LogError(slogx.FromContext(ctx), "failed to evict sibling sessions", err,
				slog.String("client_id", client.ID.String()))
		} else if n > 0 {
			slogx.FromContext(ctx).Info("sibling sessions evicted",
				slog.String("client_id", client.ID.String()),
				slog.Int64("count", n),
			)
		}
	}
	return sess, nil
}
