package pg

import (
	"context"

	"beaconcms.org/internal/auth"
)

// SyncRoles writes the built-in permission catalog and role matrix, replacing whatever
// grants each role held before. Permissions no longer in the catalog are removed.
func (s *Store) SyncRoles(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	keys := make([]string, 0, len(auth.Catalog))
	for _, p := range auth.Catalog {
		keys = append(keys, p.Key)
		if _, err := tx.ExecContext(ctx, `
			insert into permissions (key, description) values ($1, $2)
			on conflict (key) do update set description = excluded.description
		`, p.Key, p.Description); err != nil {
			return err
		}
	}
	for _, r := range auth.Roles() {
		if _, err := tx.ExecContext(ctx, `
			insert into roles (name, description) values ($1, $2)
			on conflict (name) do update set description = excluded.description
		`, r.Name, r.Description); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `delete from role_permissions where role = $1`, r.Name); err != nil {
			return err
		}
		for _, key := range r.Permissions {
			if _, err := tx.ExecContext(ctx, `
				insert into role_permissions (role, permission) values ($1, $2)
			`, r.Name, key); err != nil {
				return err
			}
		}
	}
	if _, err := tx.ExecContext(ctx, `delete from permissions where not (key = any($1))`, keys); err != nil {
		return err
	}
	return tx.Commit()
}

// RolePermissions lists the keys granted to role in the database.
func (s *Store) RolePermissions(ctx context.Context, role string) ([]string, error) {
	perms := []string{}
	err := s.db.SelectContext(ctx, &perms, `
		select permission from role_permissions where role = $1 order by permission
	`, role)
	return perms, err
}
