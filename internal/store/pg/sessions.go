package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"beaconcms.org/internal/auth"
)

func authErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrNotFound
	}
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
		return auth.ErrNotFound
	}
	return err
}

func (s *Store) CreateSession(ctx context.Context, rec auth.SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		insert into sessions (token_hash, user_id, expires_at, created_at, ip_address, user_agent)
		values ($1, $2, $3, $4, $5, $6)
	`, rec.TokenHash, rec.UserID, rec.ExpiresAt, rec.CreatedAt, rec.IPAddress, rec.UserAgent)
	return authErr(err)
}

type sessionRow struct {
	UserID      string    `db:"user_id"`
	Email       string    `db:"email"`
	Name        string    `db:"name"`
	Role        string    `db:"role"`
	IsActive    bool      `db:"is_active"`
	ExpiresAt   time.Time `db:"expires_at"`
	Permissions []byte    `db:"permissions"`
}

// FindSession joins the session to its user and the permissions granted to the user's role.
func (s *Store) FindSession(ctx context.Context, tokenHash string) (*auth.SessionLookup, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		select u.id as user_id, u.email, u.name, u.role, u.is_active, s.expires_at,
		       coalesce((select json_agg(rp.permission order by rp.permission)
		                 from role_permissions rp where rp.role = u.role), '[]')::text as permissions
		from sessions s
		join users u on u.id = s.user_id
		where s.token_hash = $1
	`, tokenHash)
	if err != nil {
		return nil, authErr(err)
	}
	var perms []string
	if err := json.Unmarshal(row.Permissions, &perms); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return &auth.SessionLookup{
		UserID:      row.UserID,
		Email:       row.Email,
		Name:        row.Name,
		Role:        row.Role,
		Permissions: perms,
		IsActive:    row.IsActive,
		ExpiresAt:   row.ExpiresAt,
	}, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.db.GetContext(ctx, &userID, `delete from sessions where token_hash = $1 returning user_id`, tokenHash)
	return userID, authErr(err)
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from sessions where expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) FindCredential(ctx context.Context, email string) (*auth.Credential, error) {
	var c struct {
		UserID       string `db:"id"`
		Email        string `db:"email"`
		Name         string `db:"name"`
		Role         string `db:"role"`
		PasswordHash string `db:"password_hash"`
		IsActive     bool   `db:"is_active"`
	}
	err := s.db.GetContext(ctx, &c, `
		select id, email, name, role, password_hash, is_active from users where lower(email) = lower($1)
	`, email)
	if err != nil {
		return nil, authErr(err)
	}
	return &auth.Credential{
		UserID:       c.UserID,
		Email:        c.Email,
		Name:         c.Name,
		Role:         c.Role,
		PasswordHash: c.PasswordHash,
		IsActive:     c.IsActive,
	}, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `update users set last_login_at = $2 where id = $1`, userID, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
