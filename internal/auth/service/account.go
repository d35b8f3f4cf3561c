package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

const (
	MinUsernameLength  = 3
	MaxUsernameLength  = 32
	MinPasswordLength  = 8
	MaxAccountsPerList = 100
)

// AccountDirectory is what the grant flows need to know about accounts.
type AccountDirectory interface {
	FindByID(ctx context.Context, id idx.ID) (domain.Account, bool, error)
	FindByUsername(ctx context.Context, username string) (domain.Account, bool, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, bool, error)

	// VerifyPassword reports whether plaintext matches the account's
	// password. The zero Account never matches but costs the same as a
	// real check.
	VerifyPassword(account domain.Account, plaintext string) bool

	// RecordLogin stamps the account's last successful login.
	RecordLogin(ctx context.Context, id idx.ID) error
}

type AccountService struct {
	Store store.Store
	Clock Clock
}

var _ AccountDirectory = (*AccountService)(nil)

func (s *AccountService) FindByID(ctx context.Context, id idx.ID) (domain.Account, bool, error) {
	return found(s.Store.Accounts().GetAccountByID(ctx, id))
}

func (s *AccountService) FindByUsername(ctx context.Context, username string) (domain.Account, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Account{}, false, nil
	}
	return found(s.Store.Accounts().GetAccountByUsername(ctx, username))
}

func (s *AccountService) FindByEmail(ctx context.Context, email string) (domain.Account, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Account{}, false, nil
	}
	return found(s.Store.Accounts().GetAccountByEmail(ctx, email))
}

// FindByLogin resolves login first as a username, then as an email address.
func (s *AccountService) FindByLogin(ctx context.Context, login string) (domain.Account, bool, error) {
	return findByLogin(ctx, s, login)
}

func (s *AccountService) VerifyPassword(account domain.Account, plaintext string) bool {
	hash := account.PasswordHash
	if hash == "" {
		hash = cryptox.DummyHash()
		_ = cryptox.VerifyPassword(plaintext, hash)
		return false
	}
	return cryptox.VerifyPassword(plaintext, hash) == nil
}

func (s *AccountService) RecordLogin(ctx context.Context, id idx.ID) error {
	if err := s.Store.Accounts().UpdateLastLogin(ctx, id, s.Clock.Now()); err != nil {
		return transient(err)
	}
	return nil
}

// ListAccounts returns the known accounts among ids. Duplicate ids are
// collapsed and at most MaxAccountsPerList ids are honoured.
func (s *AccountService) ListAccounts(ctx context.Context, ids []idx.ID) ([]domain.Account, error) {
	seen := make(map[idx.ID]struct{}, len(ids))
	unique := make([]idx.ID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) > MaxAccountsPerList {
		return nil, fmt.Errorf("%w: at most %d account ids per request", ErrInvalidRequest, MaxAccountsPerList)
	}

	accounts, err := s.Store.Accounts().ListAccounts(ctx, unique)
	if err != nil {
		return nil, transient(err)
	}
	return accounts, nil
}

// CreateAccount registers a new account. Email is optional.
func (s *AccountService) CreateAccount(ctx context.Context, username, email, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := validateUsername(username); err != nil {
		return domain.Account{}, err
	}
	if email != "" && !strings.Contains(email, "@") {
		return domain.Account{}, fmt.Errorf("%w: malformed email", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRequest, MinPasswordLength)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", "error", err)
		return domain.Account{}, err
	}

	now := s.Clock.Now()
	account := domain.Account{
		ID:           idx.NewAt(now),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	err = s.Store.Accounts().CreateAccount(ctx, account)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Account{}, ErrAccountExists
	}
	if err != nil {
		return domain.Account{}, transient(err)
	}

	l.Info("account created", slog.String("account_id", account.ID.String()), slog.String("username", username))
	return account, nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return fmt.Errorf("%w: username must be %d to %d characters", ErrInvalidRequest, MinUsernameLength, MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == '@' {
			return fmt.Errorf("%w: username contains an invalid character", ErrInvalidRequest)
		}
	}
	return nil
}

func findByLogin(ctx context.Context, dir AccountDirectory, login string) (domain.Account, bool, error) {
	a, ok, err := dir.FindByUsername(ctx, login)
	if err != nil || ok {
		return a, ok, err
	}
	return dir.FindByEmail(ctx, login)
}
