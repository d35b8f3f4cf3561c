package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type codesRepo struct {
	q dbtx
}

const codeColumns = `id, account_id, client_id, token, kind, expires_at, created_at`

func (r *codesRepo) CreateCode(ctx context.Context, c domain.AuthorizationCode) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO codes (`+codeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.AccountID.String(), c.ClientID.String(),
		c.Token.Value, string(c.Kind), toMillis(c.Token.ExpiresAt), toMillis(c.CreatedAt),
	)
	return mapWriteErr(err)
}

// ConsumeCode deletes and returns the row in one statement. sqlite serialises
// writers, so two callers can never both see the row.
func (r *codesRepo) ConsumeCode(ctx context.Context, kind domain.CodeKind, value string) (domain.AuthorizationCode, error) {
	row := r.q.QueryRowContext(ctx,
		`DELETE FROM codes WHERE token = ? AND kind = ? RETURNING `+codeColumns,
		value, string(kind),
	)

	var (
		id, accountID, clientID, k string
		expiresAt, createdAt       int64
		c                          domain.AuthorizationCode
	)
	if err := row.Scan(&id, &accountID, &clientID, &c.Token.Value, &k, &expiresAt, &createdAt); err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}
	c.ID = idx.ID(id)
	c.AccountID = idx.ID(accountID)
	c.ClientID = idx.ID(clientID)
	c.Kind = domain.CodeKind(k)
	c.Token.ExpiresAt = fromMillis(expiresAt)
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func (r *codesRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM codes WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
