package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const appColumns = `
	a.id, a.job_id, j.title as job_title, a.name, a.email, a.phone, a.resume_url, a.linkedin_url,
	a.cover_letter, a.status, a.notes, a.created_at, a.updated_at`

const appFrom = `job_applications a left join jobs j on j.id = a.job_id`

type appStore struct{ db *sqlx.DB }

func (s appStore) List(ctx context.Context, f cms.ApplicationFilter) ([]cms.JobApplication, int, error) {
	w := &where{}
	if f.JobID != "" {
		w.add("a.job_id = $%d", f.JobID)
	}
	if f.Status != "" {
		w.add("a.status = $%d", f.Status)
	}
	total, err := count(ctx, s.db, "job_applications a", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(f.Paging)
	items := []cms.JobApplication{}
	err = s.db.SelectContext(ctx, &items,
		"select "+appColumns+" from "+appFrom+w.String()+" order by a.created_at desc, a.id desc"+limit, args...)
	return items, total, err
}

func (s appStore) Get(ctx context.Context, id string) (cms.JobApplication, error) {
	var app cms.JobApplication
	err := s.db.GetContext(ctx, &app, "select "+appColumns+" from "+appFrom+" where a.id = $1", id)
	return app, mapErr(err)
}

func (s appStore) Create(ctx context.Context, a *cms.JobApplication) error {
	_, err := s.db.ExecContext(ctx, `
		insert into job_applications (id, job_id, name, email, phone, resume_url, linkedin_url,
		                              cover_letter, status, notes, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, a.ID, a.JobID, a.Name, a.Email, a.Phone, a.ResumeURL, a.LinkedInURL,
		a.CoverLetter, a.Status, a.Notes, a.CreatedAt, a.UpdatedAt)
	return mapErr(err)
}

func (s appStore) Update(ctx context.Context, a *cms.JobApplication) error {
	return affected(s.db.ExecContext(ctx, `
		update job_applications set status = $2, notes = $3, updated_at = $4 where id = $1
	`, a.ID, a.Status, a.Notes, a.UpdatedAt))
}

func (s appStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from job_applications where id = $1`, id))
}
