package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
)

var t0 = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	err := s.Users().Create(context.Background(), &cms.User{
		ID: id, Email: email, Name: "User " + id, Role: auth.RoleEditor, IsActive: true, CreatedAt: t0, UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestPostSlugConflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Posts().Create(ctx, &cms.BlogPost{ID: "p1", Slug: "hello", CreatedAt: t0}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Posts().Create(ctx, &cms.BlogPost{ID: "p2", Slug: "hello", CreatedAt: t0})
	if !errors.Is(err, cms.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := s.Posts().Create(ctx, &cms.BlogPost{ID: "p2", Slug: "world", CreatedAt: t0}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Posts().Update(ctx, &cms.BlogPost{ID: "p2", Slug: "hello"}); !errors.Is(err, cms.ErrConflict) {
		t.Fatalf("expected conflict on update, got %v", err)
	}
}

func TestListNewestFirstWithPaging(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		lead := &cms.Lead{ID: id, Name: id, Email: id + "@example.com", Status: cms.LeadNew, CreatedAt: t0.Add(time.Duration(i) * time.Hour)}
		if err := s.Leads().Create(ctx, lead); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	items, total, err := s.Leads().List(ctx, cms.LeadFilter{Paging: cms.Paging{Page: 1, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].ID != "c" || items[1].ID != "b" {
		t.Fatalf("unexpected page: total=%d items=%+v", total, items)
	}
	items, _, _ = s.Leads().List(ctx, cms.LeadFilter{Paging: cms.Paging{Page: 2, Limit: 2}})
	if len(items) != 1 || items[0].ID != "a" {
		t.Fatalf("unexpected second page: %+v", items)
	}
}

func TestLeadSearchAndAssigneeName(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "sales@example.com")
	_ = s.Leads().Create(ctx, &cms.Lead{ID: "l1", Name: "Ada", Email: "ada@acme.io", Company: strp("Acme"), AssignedTo: strp("u1"), CreatedAt: t0})
	_ = s.Leads().Create(ctx, &cms.Lead{ID: "l2", Name: "Bob", Email: "bob@globex.io", CreatedAt: t0})

	items, total, _ := s.Leads().List(ctx, cms.LeadFilter{Search: "ACME"})
	if total != 1 || items[0].ID != "l1" {
		t.Fatalf("search mismatch: %+v", items)
	}
	if items[0].AssigneeName == nil || *items[0].AssigneeName != "User u1" {
		t.Fatalf("assignee name not joined: %+v", items[0])
	}
	if err := s.Users().Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	lead, _ := s.Leads().Get(ctx, "l1")
	if lead.AssignedTo != nil || lead.AssigneeName != nil {
		t.Fatalf("assignment should be cleared: %+v", lead)
	}
}

func TestJobDeleteCascadesApplications(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Jobs().Create(ctx, &cms.Job{ID: "j1", Slug: "engineer", Title: "Engineer", CreatedAt: t0})
	if err := s.Applications().Create(ctx, &cms.JobApplication{ID: "a1", JobID: "j1", CreatedAt: t0}); err != nil {
		t.Fatalf("create app: %v", err)
	}
	if err := s.Applications().Create(ctx, &cms.JobApplication{ID: "a2", JobID: "missing"}); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("expected not found for unknown job, got %v", err)
	}
	job, _ := s.Jobs().Get(ctx, "j1")
	if job.ApplicationCount != 1 {
		t.Fatalf("expected one application, got %d", job.ApplicationCount)
	}
	app, _ := s.Applications().Get(ctx, "a1")
	if app.JobTitle == nil || *app.JobTitle != "Engineer" {
		t.Fatalf("job title not joined: %+v", app)
	}
	_ = s.Jobs().Delete(ctx, "j1")
	if _, err := s.Applications().Get(ctx, "a1"); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("application should be removed with its job, got %v", err)
	}
}

func TestSessionsLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "Editor@Example.com")

	if err := s.CreateSession(ctx, auth.SessionRecord{TokenHash: "h1", UserID: "u1", ExpiresAt: t0.Add(time.Hour)}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	_ = s.CreateSession(ctx, auth.SessionRecord{TokenHash: "h2", UserID: "u1", ExpiresAt: t0.Add(-time.Hour)})

	lookup, err := s.FindSession(ctx, "h1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !auth.HasPermission(lookup.Permissions, auth.PermBlogCreate) || auth.HasPermission(lookup.Permissions, auth.PermUsersView) {
		t.Fatalf("unexpected editor permissions: %v", lookup.Permissions)
	}
	if cred, err := s.FindCredential(ctx, "editor@example.com"); err != nil || cred.UserID != "u1" {
		t.Fatalf("credential lookup: %+v %v", cred, err)
	}
	if n, _ := s.DeleteExpiredSessions(ctx, t0); n != 1 || s.SessionCount() != 1 {
		t.Fatalf("expected one pruned session, got %d (left %d)", n, s.SessionCount())
	}
	if uid, err := s.DeleteSession(ctx, "h1"); err != nil || uid != "u1" {
		t.Fatalf("delete: %q %v", uid, err)
	}
	if _, err := s.FindSession(ctx, "h1"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDashboardCounts(t *testing.T) {
	s := New()
	ctx := context.Background()
	monthStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	created := []time.Time{t0, t0.Add(time.Hour), prevStart.Add(48 * time.Hour), prevStart.Add(-time.Hour)}
	statuses := []string{cms.LeadNew, cms.LeadWon, cms.LeadWon, cms.LeadLost}
	for i := range created {
		id := string(rune('a' + i))
		_ = s.Leads().Create(ctx, &cms.Lead{ID: id, Status: statuses[i], CreatedAt: created[i]})
	}
	_ = s.Posts().Create(ctx, &cms.BlogPost{ID: "p1", Slug: "a", Status: cms.StatusPublished})
	_ = s.Posts().Create(ctx, &cms.BlogPost{ID: "p2", Slug: "b", Status: cms.StatusDraft})

	c, err := s.DashboardCounts(ctx, monthStart, prevStart)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if c.TotalLeads != 4 || c.WonLeads != 2 || c.NewLeads != 1 {
		t.Fatalf("unexpected lead counts: %+v", c)
	}
	if c.LeadsThisMonth != 2 || c.LeadsLastMonth != 1 {
		t.Fatalf("unexpected monthly counts: %+v", c)
	}
	if c.PublishedPosts != 1 || c.DraftPosts != 1 {
		t.Fatalf("unexpected post counts: %+v", c)
	}
	if len(c.RecentLeads) != 4 || c.RecentLeads[0].ID != "b" {
		t.Fatalf("unexpected recent leads: %+v", c.RecentLeads)
	}
}

func TestListAuditFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "u1", "a@example.com")
	_ = s.AppendAudit(ctx, &audit.Entry{ID: "e1", UserID: strp("u1"), Action: audit.ActionCreate, EntityType: "lead", CreatedAt: t0})
	_ = s.AppendAudit(ctx, &audit.Entry{ID: "e2", Action: audit.ActionCreate, EntityType: "lead", CreatedAt: t0.Add(time.Minute)})
	_ = s.AppendAudit(ctx, &audit.Entry{ID: "e3", UserID: strp("u1"), Action: audit.ActionDelete, EntityType: "job", CreatedAt: t0.Add(2 * time.Minute)})

	items, total, _ := s.ListAudit(ctx, audit.Filter{EntityType: "lead", Page: 1, Limit: 50})
	if total != 2 || items[0].ID != "e2" {
		t.Fatalf("unexpected lead entries: %+v", items)
	}
	items, total, _ = s.ListAudit(ctx, audit.Filter{UserID: "u1", Page: 1, Limit: 1})
	if total != 2 || len(items) != 1 || items[0].ID != "e3" {
		t.Fatalf("unexpected user entries: %+v", items)
	}
	if items[0].UserName == nil || *items[0].UserName != "User u1" {
		t.Fatalf("user name not joined: %+v", items[0])
	}
}
