package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type accountsRepo struct {
	q dbtx
}

const accountColumns = `id, username, email, password_hash, created_at, last_login_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID.String(), a.Username, mapStringNull(a.Email), a.PasswordHash, toMillis(a.CreatedAt),
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id idx.ID) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String())
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ? COLLATE NOCASE`, username)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ? COLLATE NOCASE`, email)
	return scanAccount(row)
}

func (r *accountsRepo) ListAccounts(ctx context.Context, ids []idx.ID) ([]domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, id idx.ID, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET last_login_at = ? WHERE id = ?`, toMillis(at), id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		id        string
		email     sql.NullString
		createdAt int64
		lastLogin sql.NullInt64
		a         domain.Account
	)
	if err := row.Scan(&id, &a.Username, &email, &a.PasswordHash, &createdAt, &lastLogin); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.ID = idx.ID(id)
	a.Email = email.String
	a.CreatedAt = fromMillis(createdAt)
	a.LastLoginAt = mapNullMillis(lastLogin)
	return a, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
