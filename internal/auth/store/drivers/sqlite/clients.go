package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type clientsRepo struct {
	q dbtx
}

const clientColumns = `id, name, secret_hash, single_session, created_at`

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO clients (id, name, secret_hash, single_session, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, mapStringNull(c.SecretHash), c.SingleSession, toMillis(c.CreatedAt),
	)
	return mapWriteErr(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id idx.ID) (domain.Client, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id.String())
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) DeleteClient(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		id        string
		secret    sql.NullString
		createdAt int64
		c         domain.Client
	)
	if err := row.Scan(&id, &c.Name, &secret, &c.SingleSession, &createdAt); err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.ID = idx.ID(id)
	c.SecretHash = secret.String
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}
