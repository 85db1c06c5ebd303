package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const userColumns = `id, email, name, role, is_active, password_hash, last_login_at, created_at, updated_at`

type userStore struct{ db *sqlx.DB }

func (s userStore) List(ctx context.Context, f cms.UserFilter) ([]cms.User, int, error) {
	w := &where{}
	if f.Role != "" {
		w.add("role = $%d", f.Role)
	}
	total, err := count(ctx, s.db, "users", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(f.Paging)
	items := []cms.User{}
	err = s.db.SelectContext(ctx, &items,
		"select "+userColumns+" from users"+w.String()+" order by created_at desc, id desc"+limit, args...)
	return items, total, err
}

func (s userStore) Get(ctx context.Context, id string) (cms.User, error) {
	var u cms.User
	err := s.db.GetContext(ctx, &u, "select "+userColumns+" from users where id = $1", id)
	return u, mapErr(err)
}

func (s userStore) GetByEmail(ctx context.Context, email string) (cms.User, error) {
	var u cms.User
	err := s.db.GetContext(ctx, &u, "select "+userColumns+" from users where lower(email) = lower($1)", email)
	return u, mapErr(err)
}

func (s userStore) Create(ctx context.Context, u *cms.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users (id, email, name, role, is_active, password_hash, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.Name, u.Role, u.IsActive, u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	return mapErr(err)
}

// Update writes only the columns set in ch.
func (s userStore) Update(ctx context.Context, id string, ch cms.UserChanges) error {
	var (
		setClauses []string
		args       []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if ch.Email != nil {
		set("email", *ch.Email)
	}
	if ch.Name != nil {
		set("name", *ch.Name)
	}
	if ch.Role != nil {
		set("role", *ch.Role)
	}
	if ch.IsActive != nil {
		set("is_active", *ch.IsActive)
	}
	if ch.PasswordHash != nil {
		set("password_hash", *ch.PasswordHash)
	}
	set("updated_at", ch.UpdatedAt)
	args = append(args, id)
	query := fmt.Sprintf(`update users set %s where id = $%d`, strings.Join(setClauses, ", "), len(args))
	return affected(s.db.ExecContext(ctx, query, args...))
}

// Delete removes the user. Sessions cascade; authored rows keep their content with the reference cleared.
func (s userStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from users where id = $1`, id))
}
