package cms

import (
	"context"
	"errors"
	"strings"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/revalidate"
	"beaconcms.org/internal/validate"
)

type JobInput struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Slug           string  `json:"slug" validate:"omitempty,max=200"`
	Department     string  `json:"department" validate:"required,max=100"`
	Location       string  `json:"location" validate:"required,max=100"`
	EmploymentType string  `json:"employmentType" validate:"required,oneof=full-time part-time contract internship"`
	Description    string  `json:"description" validate:"required"`
	Requirements   *string `json:"requirements" validate:"omitempty,max=10000"`
	SalaryRange    *string `json:"salaryRange" validate:"omitempty,max=100"`
	Status         string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type JobPatch struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	Slug           *string `json:"slug" validate:"omitempty,max=200"`
	Department     *string `json:"department" validate:"omitempty,min=1,max=100"`
	Location       *string `json:"location" validate:"omitempty,min=1,max=100"`
	EmploymentType *string `json:"employmentType" validate:"omitempty,oneof=full-time part-time contract internship"`
	Description    *string `json:"description" validate:"omitempty,min=1"`
	Requirements   *string `json:"requirements" validate:"omitempty,max=10000"`
	SalaryRange    *string `json:"salaryRange" validate:"omitempty,max=100"`
	Status         *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

func (s *Service) ListJobs(ctx context.Context, actor auth.Principal, f JobFilter) ([]Job, Pagination, error) {
	if err := auth.Require(actor, auth.PermJobsView); err != nil {
		return nil, Pagination{}, err
	}
	if f.Status != "" && !statusAllowed(f.Status, publishStatuses...) {
		return nil, Pagination{}, invalid("status must be one of: draft, published, archived")
	}
	return s.listJobs(ctx, f)
}

func (s *Service) listJobs(ctx context.Context, f JobFilter) ([]Job, Pagination, error) {
	f.Paging = f.Paging.normalize()
	items, total, err := s.store.Jobs().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetJob(ctx context.Context, actor auth.Principal, id string) (Job, error) {
	if err := auth.Require(actor, auth.PermJobsView); err != nil {
		return Job{}, err
	}
	job, err := s.store.Jobs().Get(ctx, id)
	return job, lookup(err, "Job")
}

// PublishedJobs lists open positions for the careers page.
func (s *Service) PublishedJobs(ctx context.Context, department string, p Paging) ([]Job, Pagination, error) {
	return s.listJobs(ctx, JobFilter{Status: StatusPublished, Department: strings.TrimSpace(department), Paging: p})
}

// PublishedJob returns an open position by slug.
func (s *Service) PublishedJob(ctx context.Context, slug string) (Job, error) {
	job, err := s.store.Jobs().GetBySlug(ctx, slug)
	if err != nil {
		return Job{}, lookup(err, "Job")
	}
	if job.Status != StatusPublished {
		return Job{}, notFound("Job")
	}
	return job, nil
}

func (s *Service) CreateJob(ctx context.Context, actor auth.Principal, in JobInput) (string, error) {
	if err := auth.Require(actor, auth.PermJobsCreate); err != nil {
		return "", err
	}
	if err := checkInput(in); err != nil {
		return "", err
	}
	slug := validate.Slugify(orDefault(strings.TrimSpace(in.Slug), in.Title))
	if slug == "" {
		return "", invalid("slug must contain at least one letter or number")
	}
	status := orDefault(in.Status, StatusDraft)
	if status == StatusPublished {
		if err := auth.Require(actor, auth.PermJobsPublish); err != nil {
			return "", err
		}
	}
	if err := s.ensureJobSlugFree(ctx, slug, ""); err != nil {
		return "", err
	}

	now := s.timestamp()
	job := Job{
		ID:             newID(),
		Title:          strings.TrimSpace(in.Title),
		Slug:           slug,
		Department:     strings.TrimSpace(in.Department),
		Location:       strings.TrimSpace(in.Location),
		EmploymentType: in.EmploymentType,
		Description:    in.Description,
		Requirements:   validate.NullIfEmpty(in.Requirements),
		SalaryRange:    validate.NullIfEmpty(in.SalaryRange),
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == StatusPublished {
		job.PublishedAt = &now
	}
	if err := s.store.Jobs().Create(ctx, &job); err != nil {
		return "", s.jobConflict(err)
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntityJob, job.ID, nil, map[string]any{
		"title":  job.Title,
		"slug":   job.Slug,
		"status": job.Status,
	})
	s.invalidate(ctx, revalidate.JobPaths(job.Slug)...)
	return job.ID, nil
}

func (s *Service) UpdateJob(ctx context.Context, actor auth.Principal, id string, p JobPatch) (Job, error) {
	if err := auth.Require(actor, auth.PermJobsEdit); err != nil {
		return Job{}, err
	}
	if err := checkInput(p); err != nil {
		return Job{}, err
	}
	current, err := s.store.Jobs().Get(ctx, id)
	if err != nil {
		return Job{}, lookup(err, "Job")
	}
	next := current
	d := newDiff()

	if p.Slug != nil {
		slug := validate.Slugify(*p.Slug)
		if slug == "" {
			return Job{}, invalid("slug must contain at least one letter or number")
		}
		if slug != current.Slug {
			if err := s.ensureJobSlugFree(ctx, slug, current.ID); err != nil {
				return Job{}, err
			}
		}
		next.Slug = slug
		d.set("slug", current.Slug, next.Slug)
	}
	if p.Status != nil && *p.Status != current.Status {
		if *p.Status == StatusPublished {
			if err := auth.Require(actor, auth.PermJobsPublish); err != nil {
				return Job{}, err
			}
		}
		next.Status = *p.Status
		next.PublishedAt = publishedAt(current.PublishedAt, next.Status, s.timestamp())
		d.set("status", current.Status, next.Status)
		d.set("publishedAt", timeVal(current.PublishedAt), timeVal(next.PublishedAt))
	}
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
		d.set("title", current.Title, next.Title)
	}
	if p.Department != nil {
		next.Department = strings.TrimSpace(*p.Department)
		d.set("department", current.Department, next.Department)
	}
	if p.Location != nil {
		next.Location = strings.TrimSpace(*p.Location)
		d.set("location", current.Location, next.Location)
	}
	if p.EmploymentType != nil {
		next.EmploymentType = *p.EmploymentType
		d.set("employmentType", current.EmploymentType, next.EmploymentType)
	}
	if p.Description != nil {
		next.Description = *p.Description
		if next.Description != current.Description {
			d.set("descriptionLength", len(current.Description), len(next.Description))
		}
	}
	if p.Requirements != nil {
		next.Requirements = validate.NullIfEmpty(p.Requirements)
		d.set("requirements", str(current.Requirements), str(next.Requirements))
	}
	if p.SalaryRange != nil {
		next.SalaryRange = validate.NullIfEmpty(p.SalaryRange)
		d.set("salaryRange", str(current.SalaryRange), str(next.SalaryRange))
	}
	next.UpdatedAt = s.timestamp()

	if err := s.store.Jobs().Update(ctx, &next); err != nil {
		return Job{}, s.jobConflict(lookup(err, "Job"))
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityJob, id, d.old, d.new)
	s.invalidate(ctx, revalidate.JobPaths(current.Slug, next.Slug)...)
	return next, nil
}

func (s *Service) DeleteJob(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermJobsDelete); err != nil {
		return err
	}
	current, err := s.store.Jobs().Get(ctx, id)
	if err != nil {
		return lookup(err, "Job")
	}
	if err := s.store.Jobs().Delete(ctx, id); err != nil {
		return lookup(err, "Job")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityJob, id, map[string]any{
		"title":  current.Title,
		"slug":   current.Slug,
		"status": current.Status,
	}, nil)
	s.invalidate(ctx, revalidate.JobPaths(current.Slug)...)
	return nil
}

func (s *Service) ensureJobSlugFree(ctx context.Context, slug, ownID string) error {
	existing, err := s.store.Jobs().GetBySlug(ctx, slug)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownID:
		return conflict("A job with this slug already exists")
	}
	return nil
}

func (s *Service) jobConflict(err error) error {
	var e *Error
	if errors.Is(err, ErrConflict) && !errors.As(err, &e) {
		return conflict("A job with this slug already exists")
	}
	return err
}
