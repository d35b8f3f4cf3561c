package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type codesRepo struct {
	q querier
}

const codeColumns = `id, account_id, client_id, token, kind, expires_at, created_at`

func (r *codesRepo) CreateCode(ctx context.Context, c domain.AuthorizationCode) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO codes (`+codeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID.String(), c.AccountID.String(), c.ClientID.String(),
		c.Token.Value, string(c.Kind), c.Token.ExpiresAt, c.CreatedAt)
	if err != nil {
		return wrapWrite("CODE_CREATE_FAILED", err, "kind", string(c.Kind), "client_id", c.ClientID.String())
	}
	return nil
}

// ConsumeCode relies on row locking: a second DELETE of the same row waits
// for the first to commit and then matches nothing.
func (r *codesRepo) ConsumeCode(ctx context.Context, kind domain.CodeKind, value string) (domain.AuthorizationCode, error) {
	row := r.q.QueryRow(ctx,
		`DELETE FROM codes WHERE token = $1 AND kind = $2 RETURNING `+codeColumns,
		value, string(kind))

	c, err := scanCode(row)
	if err != nil {
		return domain.AuthorizationCode{}, wrapRead("CODE_CONSUME_FAILED", err, "kind", string(kind))
	}
	return c, nil
}

func (r *codesRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("CODE_SWEEP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanCode(row pgx.Row) (domain.AuthorizationCode, error) {
	var (
		id, accountID, clientID, kind string
		c                             domain.AuthorizationCode
	)
	err := row.Scan(&id, &accountID, &clientID, &c.Token.Value, &kind, &c.Token.ExpiresAt, &c.CreatedAt)
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	c.ID = idx.ID(id)
	c.AccountID = idx.ID(accountID)
	c.ClientID = idx.ID(clientID)
	c.Kind = domain.CodeKind(kind)
	c.Token.ExpiresAt = c.Token.ExpiresAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
