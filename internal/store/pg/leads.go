package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const leadColumns = `
	l.id, l.name, l.email, l.company, l.phone, l.message, l.source, l.status,
	l.assigned_to, u.name as assignee_name, l.notes, l.created_at, l.updated_at`

const leadFrom = `leads l left join users u on u.id = l.assigned_to`

type leadStore struct{ db *sqlx.DB }

func (s leadStore) List(ctx context.Context, f cms.LeadFilter) ([]cms.Lead, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("l.status = $%d", f.Status)
	}
	if f.AssignedTo != "" {
		w.add("l.assigned_to = $%d", f.AssignedTo)
	}
	if f.Search != "" {
		w.add("(l.name ilike $%[1]d or l.email ilike $%[1]d or l.company ilike $%[1]d)", "%"+f.Search+"%")
	}
	total, err := count(ctx, s.db, "leads l", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(f.Paging)
	items := []cms.Lead{}
	err = s.db.SelectContext(ctx, &items,
		"select "+leadColumns+" from "+leadFrom+w.String()+" order by l.created_at desc, l.id desc"+limit, args...)
	return items, total, err
}

func (s leadStore) Get(ctx context.Context, id string) (cms.Lead, error) {
	var lead cms.Lead
	err := s.db.GetContext(ctx, &lead, "select "+leadColumns+" from "+leadFrom+" where l.id = $1", id)
	return lead, mapErr(err)
}

func (s leadStore) Create(ctx context.Context, l *cms.Lead) error {
	_, err := s.db.ExecContext(ctx, `
		insert into leads (id, name, email, company, phone, message, source, status, assigned_to, notes, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, l.ID, l.Name, l.Email, l.Company, l.Phone, l.Message, l.Source, l.Status, l.AssignedTo, l.Notes, l.CreatedAt, l.UpdatedAt)
	return mapErr(err)
}

func (s leadStore) Update(ctx context.Context, l *cms.Lead) error {
	return affected(s.db.ExecContext(ctx, `
		update leads
		set name = $2, email = $3, company = $4, phone = $5, message = $6, source = $7,
		    status = $8, assigned_to = $9, notes = $10, updated_at = $11
		where id = $1
	`, l.ID, l.Name, l.Email, l.Company, l.Phone, l.Message, l.Source, l.Status, l.AssignedTo, l.Notes, l.UpdatedAt))
}

func (s leadStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from leads where id = $1`, id))
}
