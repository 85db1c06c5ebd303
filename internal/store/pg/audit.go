package pg

import (
	"context"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/cms"
)

type entryRow struct {
	audit.Entry
	OldJSON []byte `db:"old_value"`
	NewJSON []byte `db:"new_value"`
}

func nullJSON(v []byte) any {
	if len(v) == 0 {
		return nil
	}
	return string(v)
}

func (s *Store) AppendAudit(ctx context.Context, e *audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into audit_logs (id, user_id, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.UserID, string(e.Action), e.EntityType, e.EntityID, nullJSON(e.OldValue), nullJSON(e.NewValue),
		e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// ListAudit returns the filtered page newest first, with the acting user's name joined in.
func (s *Store) ListAudit(ctx context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	w := &where{}
	if f.EntityType != "" {
		w.add("a.entity_type = $%d", f.EntityType)
	}
	if f.Action != "" {
		w.add("a.action = $%d", string(f.Action))
	}
	if f.UserID != "" {
		w.add("a.user_id = $%d", f.UserID)
	}
	total, err := count(ctx, s.db, "audit_logs a", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(cms.Paging{Page: f.Page, Limit: f.Limit})
	query := `
		select a.id, a.user_id, u.name as user_name, a.action, a.entity_type, a.entity_id,
		       a.old_value::text as old_value, a.new_value::text as new_value,
		       a.ip_address, a.user_agent, a.created_at
		from audit_logs a
		left join users u on u.id = a.user_id` + w.String() + `
		order by a.created_at desc, a.id desc` + limit
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	items := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		e := r.Entry
		e.OldValue = r.OldJSON
		e.NewValue = r.NewJSON
		items = append(items, e)
	}
	return items, total, nil
}
