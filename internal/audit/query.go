package audit

import (
	"context"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Filter narrows the audit viewer. Zero values mean "any".
type Filter struct {
	EntityType string
	Action     Action
	UserID     string
	Page       int
	Limit      int
}

// Normalize trims the string fields and clamps paging to sane bounds.
func (f Filter) Normalize() Filter {
	f.EntityType = strings.TrimSpace(f.EntityType)
	f.UserID = strings.TrimSpace(f.UserID)
	f.Action = Action(strings.TrimSpace(string(f.Action)))
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

// Offset is the number of rows skipped before the current page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Page is one page of the audit viewer.
type Page struct {
	Items      []Entry `json:"data"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// TotalPages returns ceil(total/limit), 0 when there are no rows.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// List returns the page selected by filter, newest first.
func (r *Recorder) List(ctx context.Context, filter Filter) (Page, error) {
	filter = filter.Normalize()
	items, total, err := r.store.ListAudit(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Entry{}
	}
	return Page{
		Items:      items,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: TotalPages(total, filter.Limit),
	}, nil
}
