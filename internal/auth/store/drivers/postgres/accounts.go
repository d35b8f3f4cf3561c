package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, username, email, password_hash, created_at, last_login_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID.String(), a.Username, nullString(a.Email), a.PasswordHash, a.CreatedAt)
	if err != nil {
		return wrapWrite("ACCOUNT_CREATE_FAILED", err, "username", a.Username)
	}
	return nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id idx.ID) (domain.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id.String()))
	if err != nil {
		return domain.Account{}, wrapRead("ACCOUNT_GET_FAILED", err, "account_id", id.String())
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return domain.Account{}, wrapRead("ACCOUNT_GET_BY_USERNAME_FAILED", err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.q.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return domain.Account{}, wrapRead("ACCOUNT_GET_BY_EMAIL_FAILED", err)
	}
	return a, nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context, ids []idx.ID) ([]domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id`, keys)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").With("count", len(ids)).Wrap(err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_SCAN_FAILED").Wrap(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_ROWS_ERROR").Wrap(err)
	}
	return out, nil
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, id idx.ID, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE accounts SET last_login_at = $1 WHERE id = $2`, at, id.String())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_LOGIN_FAILED").With("account_id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("account_id", id.String()).Wrap(store.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		id        string
		email     *string
		lastLogin *time.Time
		a         domain.Account
	)
	if err := row.Scan(&id, &a.Username, &email, &a.PasswordHash, &a.CreatedAt, &lastLogin); err != nil {
		return domain.Account{}, err
	}
	a.ID = idx.ID(id)
	if email != nil {
		a.Email = *email
	}
	a.CreatedAt = a.CreatedAt.UTC()
	if lastLogin != nil {
		t := lastLogin.UTC()
		a.LastLoginAt = &t
	}
	return a, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
