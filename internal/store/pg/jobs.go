package pg

import (
	"context"

	"github.com/jmoiron/sqlx"

	"beaconcms.org/internal/cms"
)

const jobColumns = `
	j.id, j.title, j.slug, j.department, j.location, j.employment_type, j.description,
	j.requirements, j.salary_range, j.status, j.published_at,
	(select count(*) from job_applications a where a.job_id = j.id) as application_count,
	j.created_at, j.updated_at`

type jobStore struct{ db *sqlx.DB }

func (s jobStore) List(ctx context.Context, f cms.JobFilter) ([]cms.Job, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("j.status = $%d", f.Status)
	}
	if f.Department != "" {
		w.add("j.department = $%d", f.Department)
	}
	total, err := count(ctx, s.db, "jobs j", w)
	if err != nil {
		return nil, 0, err
	}
	limit, args := w.page(f.Paging)
	items := []cms.Job{}
	err = s.db.SelectContext(ctx, &items,
		"select "+jobColumns+" from jobs j"+w.String()+" order by j.created_at desc, j.id desc"+limit, args...)
	return items, total, err
}

func (s jobStore) Get(ctx context.Context, id string) (cms.Job, error) {
	var job cms.Job
	err := s.db.GetContext(ctx, &job, "select "+jobColumns+" from jobs j where j.id = $1", id)
	return job, mapErr(err)
}

func (s jobStore) GetBySlug(ctx context.Context, slug string) (cms.Job, error) {
	var job cms.Job
	err := s.db.GetContext(ctx, &job, "select "+jobColumns+" from jobs j where j.slug = $1", slug)
	return job, mapErr(err)
}

func (s jobStore) Create(ctx context.Context, j *cms.Job) error {
	_, err := s.db.ExecContext(ctx, `
		insert into jobs (id, title, slug, department, location, employment_type, description,
		                  requirements, salary_range, status, published_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, j.ID, j.Title, j.Slug, j.Department, j.Location, j.EmploymentType, j.Description,
		j.Requirements, j.SalaryRange, j.Status, j.PublishedAt, j.CreatedAt, j.UpdatedAt)
	return mapErr(err)
}

func (s jobStore) Update(ctx context.Context, j *cms.Job) error {
	return affected(s.db.ExecContext(ctx, `
		update jobs
		set title = $2, slug = $3, department = $4, location = $5, employment_type = $6, description = $7,
		    requirements = $8, salary_range = $9, status = $10, published_at = $11, updated_at = $12
		where id = $1
	`, j.ID, j.Title, j.Slug, j.Department, j.Location, j.EmploymentType, j.Description,
		j.Requirements, j.SalaryRange, j.Status, j.PublishedAt, j.UpdatedAt))
}

// Delete removes the job; its applications go with it through the foreign key.
func (s jobStore) Delete(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `delete from jobs where id = $1`, id))
}
