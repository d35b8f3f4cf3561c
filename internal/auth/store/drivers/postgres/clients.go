package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type clientsRepo struct {
	q querier
}

const clientColumns = `id, name, secret_hash, single_session, created_at`

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (id, name, secret_hash, single_session, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID.String(), c.Name, nullString(c.SecretHash), c.SingleSession, c.CreatedAt)
	if err != nil {
		return wrapWrite("CLIENT_CREATE_FAILED", err, "client_id", c.ID.String())
	}
	return nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id idx.ID) (domain.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id.String()))
	if err != nil {
		return domain.Client{}, wrapRead("CLIENT_GET_FAILED", err, "client_id", id.String())
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, oops.Code("CLIENT_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, oops.Code("CLIENT_SCAN_FAILED").Wrap(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CLIENT_ROWS_ERROR").Wrap(err)
	}
	return out, nil
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id idx.ID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("CLIENT_DELETE_FAILED").With("client_id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("NOT_FOUND").With("client_id", id.String()).Wrap(store.ErrNotFound)
	}
	return nil
}

func scanClient(row pgx.Row) (domain.Client, error) {
	var (
		id     string
		secret *string
		c      domain.Client
	)
	if err := row.Scan(&id, &c.Name, &secret, &c.SingleSession, &c.CreatedAt); err != nil {
		return domain.Client{}, err
	}
	c.ID = idx.ID(id)
	if secret != nil {
		c.SecretHash = *secret
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}
