// Package cms implements the permission-gated admin operations and the public
// read/submit operations of the marketing site.
package cms

import (
	"context"
	"errors"
	"reflect"
	"time"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/ids"
	"beaconcms.org/internal/storage"
)

// AuditLog records mutations and serves the audit viewer.
type AuditLog interface {
	Record(ctx context.Context, ev audit.Event)
	List(ctx context.Context, filter audit.Filter) (audit.Page, error)
}

// PageNotifier marks public paths stale. It must not fail the caller.
type PageNotifier interface {
	Notify(ctx context.Context, paths ...string)
}

type Deps struct {
	Store          Store
	Audit          AuditLog
	Pages          PageNotifier
	Storage        storage.Backend
	MaxUploadBytes int64
	Now            func() time.Time
}

type Service struct {
	store     Store
	audit     AuditLog
	pages     PageNotifier
	files     storage.Backend
	maxUpload int64
	now       func() time.Time
}

func New(d Deps) (*Service, error) {
	if d.Store == nil {
		return nil, errors.New("cms: store is required")
	}
	if d.Audit == nil {
		return nil, errors.New("cms: audit log is required")
	}
	s := &Service{
		store:     d.Store,
		audit:     d.Audit,
		pages:     d.Pages,
		files:     d.Storage,
		maxUpload: d.MaxUploadBytes,
		now:       d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) record(ctx context.Context, actor string, action audit.Action, entity, id string, oldValue, newValue any) {
	s.audit.Record(ctx, audit.Event{
		ActorID:    actor,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
}

func (s *Service) invalidate(ctx context.Context, paths ...string) {
	if s.pages != nil {
		s.pages.Notify(ctx, paths...)
	}
}

func newID() string { return ids.New() }

// AuditLogs serves the audit viewer.
func (s *Service) AuditLogs(ctx context.Context, actor auth.Principal, f audit.Filter) (audit.Page, error) {
	if err := auth.Require(actor, auth.PermAuditView); err != nil {
		return audit.Page{}, err
	}
	if f.Action != "" && !f.Action.Valid() {
		return audit.Page{}, invalid("action must be one of: create, update, delete, login, logout")
	}
	return s.audit.List(ctx, f)
}

// diff collects the prior and new values of changed fields for the audit log.
type diff struct {
	old map[string]any
	new map[string]any
}

func newDiff() *diff {
	return &diff{old: map[string]any{}, new: map[string]any{}}
}

func (d *diff) set(field string, before, after any) {
	if reflect.DeepEqual(before, after) {
		return
	}
	d.old[field] = before
	d.new[field] = after
}

func (d *diff) empty() bool { return len(d.new) == 0 }

// str compares optional strings by value.
func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func timeVal(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func statusAllowed(status string, allowed ...string) bool {
	for _, a := range allowed {
		if status == a {
			return true
		}
	}
	return false
}
