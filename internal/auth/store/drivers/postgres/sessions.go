package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/aussiebroadwan/ut4master/internal/auth/domain"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
)

type sessionsRepo struct {
	q querier
}

const sessionColumns = `id, account_id, client_id, access_token, access_expires_at,
	refresh_token, refresh_expires_at, creation_method, created_at, revision`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID.String(), s.AccountID.String(), s.ClientID.String(),
		s.AccessToken.Value, s.AccessToken.ExpiresAt,
		s.RefreshToken.Value, s.RefreshToken.ExpiresAt,
		string(s.CreationMethod), s.CreatedAt, s.Revision)
	if err != nil {
		return wrapWrite("SESSION_CREATE_FAILED", err, "session_id", s.ID.String(), "client_id", s.ClientID.String())
	}
	return nil
}

func (r *sessionsRepo) GetSessionByID(ctx context.Context, id idx.ID) (domain.Session, error) {
	s, err := scanSession(r.q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id.String()))
	if err != nil {
		return domain.Session{}, wrapRead("SESSION_GET_BY_ID_FAILED", err, "session_id", id.String())
	}
	return s, nil
}

func (r *sessionsRepo) GetSessionByAccessToken(ctx context.Context, token string) (domain.Session, error) {
	s, err := scanSession(r.q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE access_token = $1`, token))
	if err != nil {
		return domain.Session{}, wrapRead("SESSION_GET_BY_ACCESS_FAILED", err)
	}
	return s, nil
}

func (r *sessionsRepo) GetSessionByRefreshToken(ctx context.Context, token string) (domain.Session, error) {
	s, err := scanSession(r.q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = $1`, token))
	if err != nil {
		return domain.Session{}, wrapRead("SESSION_GET_BY_REFRESH_FAILED", err)
	}
	return s, nil
}

func (r *sessionsRepo) GetSessionByAccountAndClient(ctx context.Context, accountID, clientID idx.ID) (domain.Session, error) {
	s, err := scanSession(r.q.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE account_id = $1 AND client_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, accountID.String(), clientID.String()))
	if err != nil {
		return domain.Session{}, wrapRead("SESSION_GET_BY_PAIR_FAILED", err,
			"account_id", accountID.String(), "client_id", clientID.String())
	}
	return s, nil
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	updated, err := scanSession(r.q.QueryRow(ctx, `
		UPDATE sessions SET
			access_token = $1, access_expires_at = $2,
			refresh_token = $3, refresh_expires_at = $4,
			creation_method = $5, revision = revision + 1
		WHERE id = $6 AND revision = $7
		RETURNING `+sessionColumns,
		s.AccessToken.Value, s.AccessToken.ExpiresAt,
		s.RefreshToken.Value, s.RefreshToken.ExpiresAt,
		string(s.CreationMethod), s.ID.String(), s.Revision))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, oops.Code("SESSION_CONFLICT").
			With("session_id", s.ID.String()).
			With("revision", s.Revision).
			Wrap(store.ErrConflict)
	}
	if err != nil {
		return domain.Session{}, wrapWrite("SESSION_UPDATE_FAILED", err, "session_id", s.ID.String())
	}
	return updated, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id idx.ID) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id.String()); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").With("session_id", id.String()).Wrap(err)
	}
	return nil
}

func (r *sessionsRepo) DeleteOtherSessions(ctx context.Context, clientID, keepID idx.ID) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM sessions WHERE client_id = $1 AND id <> $2`, clientID.String(), keepID.String())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_OTHERS_FAILED").With("client_id", clientID.String()).Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func (r *sessionsRepo) DeleteOtherAccountSessions(ctx context.Context, accountID, clientID, keepID idx.ID) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM sessions WHERE account_id = $1 AND client_id = $2 AND id <> $3`,
		accountID.String(), clientID.String(), keepID.String())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_OTHERS_FAILED").
			With("account_id", accountID.String()).
			With("client_id", clientID.String()).
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE refresh_expires_at <= $1`, now)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var (
		id, accountID, clientID, method string
		s                               domain.Session
	)
	err := row.Scan(&id, &accountID, &clientID,
		&s.AccessToken.Value, &s.AccessToken.ExpiresAt,
		&s.RefreshToken.Value, &s.RefreshToken.ExpiresAt,
		&method, &s.CreatedAt, &s.Revision)
	if err != nil {
		return domain.Session{}, err
	}
	s.ID = idx.ID(id)
	s.AccountID = idx.ID(accountID)
	s.ClientID = idx.ID(clientID)
	s.CreationMethod = domain.CreationMethod(method)
	s.AccessToken.ExpiresAt = s.AccessToken.ExpiresAt.UTC()
	s.RefreshToken.ExpiresAt = s.RefreshToken.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
