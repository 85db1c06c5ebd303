package cms

import (
	"context"
	"strings"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/validate"
)

var applicationStatuses = []string{
	ApplicationNew, ApplicationReviewing, ApplicationInterview,
	ApplicationOffered, ApplicationHired, ApplicationRejected,
}

// ApplicationInput is the public job application form.
type ApplicationInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email,max=320"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	ResumeURL   *string `json:"resumeUrl" validate:"omitempty,url,max=1000"`
	LinkedInURL *string `json:"linkedinUrl" validate:"omitempty,url,max=1000"`
	CoverLetter *string `json:"coverLetter" validate:"omitempty,max=10000"`
}

type ApplicationPatch struct {
	Status *string `json:"status" validate:"omitempty,oneof=new reviewing interview offered hired rejected"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}

func (s *Service) ListApplications(ctx context.Context, actor auth.Principal, f ApplicationFilter) ([]JobApplication, Pagination, error) {
	if err := auth.Require(actor, auth.PermApplicationsView); err != nil {
		return nil, Pagination{}, err
	}
	if f.Status != "" && !statusAllowed(f.Status, applicationStatuses...) {
		return nil, Pagination{}, invalid("status must be one of: %s", strings.Join(applicationStatuses, ", "))
	}
	f.Paging = f.Paging.normalize()
	items, total, err := s.store.Applications().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetApplication(ctx context.Context, actor auth.Principal, id string) (JobApplication, error) {
	if err := auth.Require(actor, auth.PermApplicationsView); err != nil {
		return JobApplication{}, err
	}
	app, err := s.store.Applications().Get(ctx, id)
	return app, lookup(err, "Application")
}

// SubmitApplication files an application against a published job.
func (s *Service) SubmitApplication(ctx context.Context, jobSlug string, in ApplicationInput) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	job, err := s.PublishedJob(ctx, jobSlug)
	if err != nil {
		return "", err
	}
	now := s.timestamp()
	app := JobApplication{
		ID:          newID(),
		JobID:       job.ID,
		Name:        strings.TrimSpace(in.Name),
		Email:       validate.NormalizeEmail(in.Email),
		Phone:       validate.NullIfEmpty(in.Phone),
		ResumeURL:   validate.NullIfEmpty(in.ResumeURL),
		LinkedInURL: validate.NullIfEmpty(in.LinkedInURL),
		CoverLetter: validate.NullIfEmpty(in.CoverLetter),
		Status:      ApplicationNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Applications().Create(ctx, &app); err != nil {
		return "", lookup(err, "Job")
	}
	s.record(ctx, "", audit.ActionCreate, EntityApplication, app.ID, nil, map[string]any{
		"jobId": job.ID,
		"name":  app.Name,
		"email": app.Email,
	})
	return app.ID, nil
}

func (s *Service) UpdateApplication(ctx context.Context, actor auth.Principal, id string, p ApplicationPatch) (JobApplication, error) {
	if err := auth.Require(actor, auth.PermApplicationsEdit); err != nil {
		return JobApplication{}, err
	}
	if err := checkInput(p); err != nil {
		return JobApplication{}, err
	}
	current, err := s.store.Applications().Get(ctx, id)
	if err != nil {
		return JobApplication{}, lookup(err, "Application")
	}
	next := current
	d := newDiff()
	if p.Status != nil {
		next.Status = *p.Status
		d.set("status", current.Status, next.Status)
	}
	if p.Notes != nil {
		next.Notes = validate.NullIfEmpty(p.Notes)
		d.set("notes", str(current.Notes), str(next.Notes))
	}
	next.UpdatedAt = s.timestamp()
	if err := s.store.Applications().Update(ctx, &next); err != nil {
		return JobApplication{}, lookup(err, "Application")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityApplication, id, d.old, d.new)
	return next, nil
}

func (s *Service) DeleteApplication(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermApplicationsDelete); err != nil {
		return err
	}
	current, err := s.store.Applications().Get(ctx, id)
	if err != nil {
		return lookup(err, "Application")
	}
	if err := s.store.Applications().Delete(ctx, id); err != nil {
		return lookup(err, "Application")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityApplication, id, map[string]any{
		"jobId":  current.JobID,
		"name":   current.Name,
		"email":  current.Email,
		"status": current.Status,
	}, nil)
	return nil
}
