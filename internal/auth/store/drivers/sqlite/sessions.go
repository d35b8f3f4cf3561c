package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type sessionsRepo struct {
	q dbtx
}

const sessionColumns = `id, account_id, client_id, access_token, access_expires_at,
	refresh_token, refresh_expires_at, creation_method, created_at, revision`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.AccountID.String(), s.ClientID.String(),
		s.AccessToken.Value, toMillis(s.AccessToken.ExpiresAt),
		s.RefreshToken.Value, toMillis(s.RefreshToken.ExpiresAt),
		string(s.CreationMethod), toMillis(s.CreatedAt), s.Revision,
	)
	return mapWriteErr(err)
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id idx.ID) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String()))
}

func (r *sessionsRepo) GetSessionByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE access_token = ?`, token))
}

func (r *sessionsRepo) GetSessionByRefreshToken(ctx context.Context, token string) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = ?`, token))
}

func (r *sessionsRepo) GetSessionByAccountAndClient(ctx context.Context, accountID, clientID idx.ID) (domain.Session, error) {
	return scanSession(r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		WHERE account_id = ? AND client_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		accountID.String(), clientID.String()))
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`UPDATE sessions SET
			access_token = ?, access_expires_at = ?,
			refresh_token = ?, refresh_expires_at = ?,
			creation_method = ?, revision = revision + 1
		WHERE id = ? AND revision = ?
		RETURNING `+sessionColumns,
		s.AccessToken.Value, toMillis(s.AccessToken.ExpiresAt),
		s.RefreshToken.Value, toMillis(s.RefreshToken.ExpiresAt),
		string(s.CreationMethod), s.ID.String(), s.Revision,
	)

	updated, err := scanSession(row)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, store.ErrConflict
	}
	if err != nil {
		return domain.Session{}, mapWriteErr(err)
	}
	return updated, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id idx.ID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	return err
}

func (r *sessionsRepo) DeleteOtherSessions(ctx context.Context, clientID, keepID idx.ID) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE client_id = ? AND id <> ?`, clientID.String(), keepID.String())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteOtherAccountSessions(ctx context.Context, accountID, clientID, keepID idx.ID) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE account_id = ? AND client_id = ? AND id <> ?`,
		accountID.String(), clientID.String(), keepID.String())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE refresh_expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		id, accountID, clientID, method string
		accessExp, refreshExp, created  int64
		s                               domain.Session
	)
	err := row.Scan(&id, &accountID, &clientID,
		&s.AccessToken.Value, &accessExp,
		&s.RefreshToken.Value, &refreshExp,
		&method, &created, &s.Revision)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.ID = idx.ID(id)
	s.AccountID = idx.ID(accountID)
	s.ClientID = idx.ID(clientID)
	s.AccessToken.ExpiresAt = fromMillis(accessExp)
	s.RefreshToken.ExpiresAt = fromMillis(refreshExp)
	s.CreationMethod = domain.CreationMethod(method)
	s.CreatedAt = fromMillis(created)
	return s, nil
}
