package cms

import (
	"context"
	"errors"
	"strings"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/validate"
)

var leadStatuses = []string{LeadNew, LeadContacted, LeadQualified, LeadProposal, LeadWon, LeadLost}

type LeadInput struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Email      string  `json:"email" validate:"required,email,max=320"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Message    *string `json:"message" validate:"omitempty,max=5000"`
	Source     string  `json:"source" validate:"omitempty,max=100"`
	Status     string  `json:"status" validate:"omitempty,oneof=new contacted qualified proposal won lost"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,max=64"`
	Notes      *string `json:"notes" validate:"omitempty,max=5000"`
}

// LeadPatch is a partial update. An empty assignedTo unassigns the lead.
type LeadPatch struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email      *string `json:"email" validate:"omitempty,email,max=320"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Message    *string `json:"message" validate:"omitempty,max=5000"`
	Source     *string `json:"source" validate:"omitempty,max=100"`
	Status     *string `json:"status" validate:"omitempty,oneof=new contacted qualified proposal won lost"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,max=64"`
	Notes      *string `json:"notes" validate:"omitempty,max=5000"`
}

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email,max=320"`
	Company *string `json:"company" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Message string  `json:"message" validate:"required,max=5000"`
}

func (s *Service) ListLeads(ctx context.Context, actor auth.Principal, f LeadFilter) ([]Lead, Pagination, error) {
	if err := auth.Require(actor, auth.PermLeadsView); err != nil {
		return nil, Pagination{}, err
	}
	if f.Status != "" && !statusAllowed(f.Status, leadStatuses...) {
		return nil, Pagination{}, invalid("status must be one of: %s", strings.Join(leadStatuses, ", "))
	}
	f.Paging = f.Paging.normalize()
	f.Search = strings.TrimSpace(f.Search)
	items, total, err := s.store.Leads().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetLead(ctx context.Context, actor auth.Principal, id string) (Lead, error) {
	if err := auth.Require(actor, auth.PermLeadsView); err != nil {
		return Lead{}, err
	}
	lead, err := s.store.Leads().Get(ctx, id)
	return lead, lookup(err, "Lead")
}

func (s *Service) CreateLead(ctx context.Context, actor auth.Principal, in LeadInput) (string, error) {
	if err := auth.Require(actor, auth.PermLeadsCreate); err != nil {
		return "", err
	}
	if err := checkInput(in); err != nil {
		return "", err
	}
	assignee := validate.NullIfEmpty(in.AssignedTo)
	if assignee != nil {
		if err := auth.Require(actor, auth.PermLeadsAssign); err != nil {
			return "", err
		}
		if err := s.checkAssignee(ctx, *assignee); err != nil {
			return "", err
		}
	}
	now := s.timestamp()
	lead := Lead{
		ID:         newID(),
		Name:       strings.TrimSpace(in.Name),
		Email:      validate.NormalizeEmail(in.Email),
		Company:    validate.NullIfEmpty(in.Company),
		Phone:      validate.NullIfEmpty(in.Phone),
		Message:    validate.NullIfEmpty(in.Message),
		Source:     orDefault(strings.TrimSpace(in.Source), "admin"),
		Status:     orDefault(in.Status, LeadNew),
		AssignedTo: assignee,
		Notes:      validate.NullIfEmpty(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Leads().Create(ctx, &lead); err != nil {
		return "", err
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntityLead, lead.ID, nil, map[string]any{
		"name":   lead.Name,
		"email":  lead.Email,
		"status": lead.Status,
	})
	return lead.ID, nil
}

// SubmitContact stores a contact-form submission as a new lead.
func (s *Service) SubmitContact(ctx context.Context, in ContactInput) (string, error) {
	if err := checkInput(in); err != nil {
		return "", err
	}
	now := s.timestamp()
	message := strings.TrimSpace(in.Message)
	lead := Lead{
		ID:        newID(),
		Name:      strings.TrimSpace(in.Name),
		Email:     validate.NormalizeEmail(in.Email),
		Company:   validate.NullIfEmpty(in.Company),
		Phone:     validate.NullIfEmpty(in.Phone),
		Message:   &message,
		Source:    "contact_form",
		Status:    LeadNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Leads().Create(ctx, &lead); err != nil {
		return "", err
	}
	s.record(ctx, "", audit.ActionCreate, EntityLead, lead.ID, nil, map[string]any{
		"name":   lead.Name,
		"email":  lead.Email,
		"source": lead.Source,
	})
	return lead.ID, nil
}

func (s *Service) UpdateLead(ctx context.Context, actor auth.Principal, id string, p LeadPatch) (Lead, error) {
	if err := auth.Require(actor, auth.PermLeadsEdit); err != nil {
		return Lead{}, err
	}
	if err := checkInput(p); err != nil {
		return Lead{}, err
	}
	current, err := s.store.Leads().Get(ctx, id)
	if err != nil {
		return Lead{}, lookup(err, "Lead")
	}
	next := current
	d := newDiff()

	if p.AssignedTo != nil {
		assignee := validate.NullIfEmpty(p.AssignedTo)
		if str(assignee) != str(current.AssignedTo) {
			if err := auth.Require(actor, auth.PermLeadsAssign); err != nil {
				return Lead{}, err
			}
			if assignee != nil {
				if err := s.checkAssignee(ctx, *assignee); err != nil {
					return Lead{}, err
				}
			}
			next.AssignedTo = assignee
			next.AssigneeName = nil
			d.set("assignedTo", str(current.AssignedTo), str(assignee))
		}
	}
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
		d.set("name", current.Name, next.Name)
	}
	if p.Email != nil {
		next.Email = validate.NormalizeEmail(*p.Email)
		d.set("email", current.Email, next.Email)
	}
	if p.Company != nil {
		next.Company = validate.NullIfEmpty(p.Company)
		d.set("company", str(current.Company), str(next.Company))
	}
	if p.Phone != nil {
		next.Phone = validate.NullIfEmpty(p.Phone)
		d.set("phone", str(current.Phone), str(next.Phone))
	}
	if p.Message != nil {
		next.Message = validate.NullIfEmpty(p.Message)
		d.set("message", str(current.Message), str(next.Message))
	}
	if p.Source != nil {
		next.Source = orDefault(strings.TrimSpace(*p.Source), current.Source)
		d.set("source", current.Source, next.Source)
	}
	if p.Status != nil {
		next.Status = *p.Status
		d.set("status", current.Status, next.Status)
	}
	if p.Notes != nil {
		next.Notes = validate.NullIfEmpty(p.Notes)
		d.set("notes", str(current.Notes), str(next.Notes))
	}
	next.UpdatedAt = s.timestamp()

	if err := s.store.Leads().Update(ctx, &next); err != nil {
		return Lead{}, lookup(err, "Lead")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityLead, id, d.old, d.new)
	updated, err := s.store.Leads().Get(ctx, id)
	if err != nil {
		return next, nil
	}
	return updated, nil
}

func (s *Service) DeleteLead(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermLeadsDelete); err != nil {
		return err
	}
	current, err := s.store.Leads().Get(ctx, id)
	if err != nil {
		return lookup(err, "Lead")
	}
	if err := s.store.Leads().Delete(ctx, id); err != nil {
		return lookup(err, "Lead")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityLead, id, map[string]any{
		"name":   current.Name,
		"email":  current.Email,
		"status": current.Status,
	}, nil)
	return nil
}

func (s *Service) checkAssignee(ctx context.Context, userID string) error {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("assignedTo must reference an existing user")
		}
		return err
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
