package cms_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/storage"
	"beaconcms.org/internal/store/memory"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type pageRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (p *pageRecorder) Notify(_ context.Context, paths ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, paths...)
}

func (p *pageRecorder) has(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, got := range p.paths {
		if got == path {
			return true
		}
	}
	return false
}

type brokenAudit struct{}

func (brokenAudit) AppendAudit(context.Context, *audit.Entry) error {
	return errors.New("audit table unavailable")
}

func (brokenAudit) ListAudit(context.Context, audit.Filter) ([]audit.Entry, int, error) {
	return nil, 0, errors.New("audit table unavailable")
}

type fixture struct {
	svc   *cms.Service
	store *memory.Store
	pages *pageRecorder
	files *storage.Local
}

func newFixture(t *testing.T, auditStore audit.Store) *fixture {
	t.Helper()
	store := memory.New()
	if auditStore == nil {
		auditStore = store
	}
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	pages := &pageRecorder{}
	svc, err := cms.New(cms.Deps{
		Store:          store,
		Audit:          audit.NewRecorder(auditStore).WithClock(func() time.Time { return now }),
		Pages:          pages,
		Storage:        files,
		MaxUploadBytes: 10 << 20,
		Now:            func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("cms.New: %v", err)
	}
	return &fixture{svc: svc, store: store, pages: pages, files: files}
}

// actor seeds a user with role and returns the principal a session for them resolves to.
func (f *fixture) actor(t *testing.T, id, role string) auth.Principal {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	err = f.store.Users().Create(context.Background(), &cms.User{
		ID: id, Email: id + "@beacon.test", Name: "User " + id, Role: role,
		IsActive: true, PasswordHash: hash, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return auth.NewPrincipal(id, id+"@beacon.test", "User "+id, role, auth.PermissionsForRole(role))
}

func (f *fixture) auditCount(action audit.Action, entity string) int {
	n := 0
	for _, e := range f.store.AuditEntries() {
		if e.Action == action && e.EntityType == entity {
			n++
		}
	}
	return n
}

func errMsg(err error) string {
	var e *cms.Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}

func TestPermissionDeniedWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	viewer := f.actor(t, "viewer", auth.RoleViewer)

	_, err := f.svc.CreatePost(context.Background(), viewer, cms.PostInput{Title: "Hello", Content: "Body"})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, total, _ := f.store.Posts().List(context.Background(), cms.PostFilter{}); total != 0 {
		t.Fatalf("no post should exist, got %d", total)
	}
	if n := len(f.store.AuditEntries()); n != 0 {
		t.Fatalf("no audit rows expected, got %d", n)
	}

	_, err = f.svc.CreatePost(context.Background(), auth.Principal{}, cms.PostInput{Title: "Hello", Content: "Body"})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestCreatePostSlugConflict(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	id, err := f.svc.CreatePost(ctx, admin, cms.PostInput{Title: "Hello World!", Content: "First"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	post, err := f.svc.GetPost(ctx, admin, id)
	if err != nil || post.Slug != "hello-world" || post.Status != cms.StatusDraft {
		t.Fatalf("unexpected post %+v (%v)", post, err)
	}
	if post.AuthorName == nil || *post.AuthorName != "User admin" {
		t.Fatalf("author not joined: %+v", post.AuthorName)
	}

	_, err = f.svc.CreatePost(ctx, admin, cms.PostInput{Title: "Hello World", Content: "Second"})
	if !errors.Is(err, cms.ErrConflict) || errMsg(err) != "A post with this slug already exists" {
		t.Fatalf("expected slug conflict, got %v", err)
	}
	if n := f.auditCount(audit.ActionCreate, cms.EntityPost); n != 1 {
		t.Fatalf("expected one create entry, got %d", n)
	}
	if !f.pages.has("/blog/hello-world") || !f.pages.has("/blog") {
		t.Fatalf("blog paths not invalidated: %v", f.pages.paths)
	}
}

func TestPublishRequiresPublishPermission(t *testing.T) {
	f := newFixture(t, nil)
	editor := f.actor(t, "editor", auth.RoleEditor)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, editor, cms.PostInput{Title: "Launch", Content: "x", Status: cms.StatusPublished})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("editor publish on create: got %v", err)
	}
	id, err := f.svc.CreatePost(ctx, editor, cms.PostInput{Title: "Launch", Content: "x"})
	if err != nil {
		t.Fatalf("draft create: %v", err)
	}
	published := cms.StatusPublished
	if _, err := f.svc.UpdatePost(ctx, editor, id, cms.PostPatch{Status: &published}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("editor publish on update: got %v", err)
	}
	if _, err := f.svc.PublishedPost(ctx, "launch"); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("draft must not be public, got %v", err)
	}

	post, err := f.svc.UpdatePost(ctx, admin, id, cms.PostPatch{Status: &published})
	if err != nil {
		t.Fatalf("admin publish: %v", err)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(now) {
		t.Fatalf("publishedAt not stamped: %v", post.PublishedAt)
	}
	if _, err := f.svc.PublishedPost(ctx, "launch"); err != nil {
		t.Fatalf("published post lookup: %v", err)
	}

	draft := cms.StatusDraft
	post, err = f.svc.UpdatePost(ctx, editor, id, cms.PostPatch{Status: &draft})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if post.PublishedAt != nil {
		t.Fatalf("publishedAt should be cleared, got %v", post.PublishedAt)
	}
}

func TestAuditFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t, brokenAudit{})
	admin := f.actor(t, "admin", auth.RoleAdmin)

	id, err := f.svc.CreateLead(context.Background(), admin, cms.LeadInput{Name: "Ada", Email: "ADA@Example.com"})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	lead, err := f.store.Leads().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("lead should be stored: %v", err)
	}
	if lead.Email != "ada@example.com" || lead.Status != cms.LeadNew || lead.Source != "admin" {
		t.Fatalf("unexpected lead %+v", lead)
	}
}

func TestLeadAssignment(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	f.actor(t, "sales", auth.RoleViewer)
	ctx := context.Background()

	missing := "nobody"
	_, err := f.svc.CreateLead(ctx, admin, cms.LeadInput{Name: "Ada", Email: "ada@example.com", AssignedTo: &missing})
	if !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("expected invalid assignee, got %v", err)
	}

	sales := "sales"
	id, err := f.svc.CreateLead(ctx, admin, cms.LeadInput{Name: "Ada", Email: "ada@example.com", AssignedTo: &sales})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lead, _ := f.svc.GetLead(ctx, admin, id)
	if lead.AssigneeName == nil || *lead.AssigneeName != "User sales" {
		t.Fatalf("assignee name missing: %+v", lead)
	}

	editOnly := auth.NewPrincipal("clerk", "clerk@beacon.test", "Clerk", auth.RoleEditor,
		[]string{auth.PermLeadsView, auth.PermLeadsEdit})
	unassigned := ""
	if _, err := f.svc.UpdateLead(ctx, editOnly, id, cms.LeadPatch{AssignedTo: &unassigned}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("reassignment without leads:assign: got %v", err)
	}
	won := cms.LeadWon
	updated, err := f.svc.UpdateLead(ctx, editOnly, id, cms.LeadPatch{Status: &won})
	if err != nil || updated.Status != cms.LeadWon {
		t.Fatalf("status update: %+v %v", updated, err)
	}

	entries := f.store.AuditEntries()
	last := entries[len(entries)-1]
	var oldValue, newValue map[string]string
	_ = json.Unmarshal(last.OldValue, &oldValue)
	_ = json.Unmarshal(last.NewValue, &newValue)
	if oldValue["status"] != "new" || newValue["status"] != "won" || len(newValue) != 1 {
		t.Fatalf("unexpected diff %s -> %s", last.OldValue, last.NewValue)
	}
}

func TestSubmitContactIsAnonymous(t *testing.T) {
	f := newFixture(t, nil)
	ctx := audit.WithRequestMeta(context.Background(), audit.RequestMeta{IPAddress: "198.51.100.7"})

	if _, err := f.svc.SubmitContact(ctx, cms.ContactInput{Name: "Ada", Email: "ada@example.com"}); !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("missing message should be rejected, got %v", err)
	}
	id, err := f.svc.SubmitContact(ctx, cms.ContactInput{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	lead, _ := f.store.Leads().Get(context.Background(), id)
	if lead.Source != "contact_form" || lead.Status != cms.LeadNew {
		t.Fatalf("unexpected lead %+v", lead)
	}
	entries := f.store.AuditEntries()
	if len(entries) != 1 || entries[0].UserID != nil || entries[0].IPAddress != "198.51.100.7" {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}

func TestUserRules(t *testing.T) {
	f := newFixture(t, nil)
	root := f.actor(t, "root", auth.RoleSuperAdmin)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	err := f.svc.DeleteUser(ctx, root, root.ID)
	if !errors.Is(err, cms.ErrInvalidInput) || errMsg(err) != "You cannot delete your own account" {
		t.Fatalf("self delete: got %v", err)
	}
	if _, err := f.store.Users().Get(ctx, root.ID); err != nil {
		t.Fatalf("user must survive: %v", err)
	}

	id, err := f.svc.CreateUser(ctx, root, cms.UserInput{Email: "Writer@Beacon.test", Name: "Writer", Password: "longenough", Role: auth.RoleEditor})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.svc.CreateUser(ctx, root, cms.UserInput{Email: "writer@beacon.test", Name: "Dup", Password: "longenough", Role: auth.RoleViewer})
	if !errors.Is(err, cms.ErrConflict) || errMsg(err) != "A user with this email already exists" {
		t.Fatalf("duplicate email: got %v", err)
	}
	if n := f.auditCount(audit.ActionCreate, cms.EntityUser); n != 1 {
		t.Fatalf("expected one user create entry, got %d", n)
	}

	if _, err := f.svc.CreateUser(ctx, admin, cms.UserInput{Email: "x@beacon.test", Name: "X", Password: "longenough", Role: auth.RoleViewer}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("admin lacks users:create, got %v", err)
	}
	super := auth.RoleSuperAdmin
	if _, err := f.svc.UpdateUser(ctx, admin, id, cms.UserPatch{Role: &super}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("admin granting super_admin: got %v", err)
	}
	inactive := false
	if _, err := f.svc.UpdateUser(ctx, admin, admin.ID, cms.UserPatch{IsActive: &inactive}); !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("self deactivation: got %v", err)
	}

	password := "brand-new-pass"
	user, err := f.svc.UpdateUser(ctx, root, id, cms.UserPatch{Role: &super, Password: &password})
	if err != nil || user.Role != auth.RoleSuperAdmin {
		t.Fatalf("root update: %+v %v", user, err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		t.Fatalf("password not changed: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, nil)
	me := f.actor(t, "me", auth.RoleViewer)
	ctx := context.Background()

	wrong, next := "nope", "another-password"
	_, err := f.svc.UpdateProfile(ctx, me, cms.ProfileInput{CurrentPassword: &wrong, NewPassword: &next})
	if errMsg(err) != "Current password is incorrect" {
		t.Fatalf("expected wrong password error, got %v", err)
	}
	current, name := "correct horse", "Renamed"
	user, err := f.svc.UpdateProfile(ctx, me, cms.ProfileInput{Name: &name, CurrentPassword: &current, NewPassword: &next})
	if err != nil || user.Name != "Renamed" {
		t.Fatalf("profile update: %+v %v", user, err)
	}
}

func TestJobsAndApplications(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	id, err := f.svc.CreateJob(ctx, admin, cms.JobInput{
		Title: "Platform Engineer", Department: "Engineering", Location: "Remote",
		EmploymentType: "full-time", Description: "Build things",
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	in := cms.ApplicationInput{Name: "Grace", Email: "grace@example.com"}
	if _, err := f.svc.SubmitApplication(ctx, "platform-engineer", in); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("draft job should not accept applications, got %v", err)
	}
	published := cms.StatusPublished
	if _, err := f.svc.UpdateJob(ctx, admin, id, cms.JobPatch{Status: &published}); err != nil {
		t.Fatalf("publish job: %v", err)
	}
	if !f.pages.has("/careers/platform-engineer") {
		t.Fatalf("careers paths not invalidated: %v", f.pages.paths)
	}
	appID, err := f.svc.SubmitApplication(ctx, "platform-engineer", in)
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	app, err := f.svc.GetApplication(ctx, admin, appID)
	if err != nil || app.JobTitle == nil || *app.JobTitle != "Platform Engineer" || app.Status != cms.ApplicationNew {
		t.Fatalf("unexpected application %+v (%v)", app, err)
	}
	job, _ := f.svc.PublishedJob(ctx, "platform-engineer")
	if job.ApplicationCount != 1 {
		t.Fatalf("expected one application, got %d", job.ApplicationCount)
	}
}

func TestSettings(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	if _, err := f.svc.CreateSetting(ctx, admin, cms.SettingInput{Key: "site_title", Value: json.RawMessage(`"Beacon"`)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.CreateSetting(ctx, admin, cms.SettingInput{Key: "smtp_password", Value: json.RawMessage(`"hunter2"`)}); err != nil {
		t.Fatalf("create private: %v", err)
	}
	_, err := f.svc.CreateSetting(ctx, admin, cms.SettingInput{Key: "site_title", Value: json.RawMessage(`"Other"`)})
	if !errors.Is(err, cms.ErrConflict) || errMsg(err) != "A setting with this key already exists" {
		t.Fatalf("duplicate key: got %v", err)
	}
	if _, err := f.svc.CreateSetting(ctx, admin, cms.SettingInput{Key: "Bad-Key", Value: json.RawMessage(`1`)}); !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("bad key: got %v", err)
	}

	public, err := f.svc.PublicSettings(ctx)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(public) != 1 || string(public["site_title"]) != `"Beacon"` {
		t.Fatalf("unexpected public settings %v", public)
	}
	if !f.pages.has("/") || !f.pages.has("/pricing") {
		t.Fatalf("shared pages not invalidated: %v", f.pages.paths)
	}
}

func TestUpsertContent(t *testing.T) {
	f := newFixture(t, nil)
	editor := f.actor(t, "editor", auth.RoleEditor)
	ctx := context.Background()

	in := cms.ContentInput{Page: "about", Section: "hero", Data: json.RawMessage(`{"title": "Hi"}`)}
	id, created, err := f.svc.UpsertContent(ctx, editor, in)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}
	in.Data = json.RawMessage(`{"title":"Hello"}`)
	again, created, err := f.svc.UpsertContent(ctx, editor, in)
	if err != nil || created || again != id {
		t.Fatalf("second upsert: id=%s created=%v err=%v", again, created, err)
	}
	in.Data = json.RawMessage(`["not", "an", "object"]`)
	if _, _, err := f.svc.UpsertContent(ctx, editor, in); !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("array data: got %v", err)
	}

	sections, err := f.svc.PageContent(ctx, "about")
	if err != nil || string(sections["hero"]) != `{"title":"Hello"}` {
		t.Fatalf("unexpected page content %v (%v)", sections, err)
	}
	if f.auditCount(audit.ActionCreate, cms.EntityContent) != 1 || f.auditCount(audit.ActionUpdate, cms.EntityContent) != 1 {
		t.Fatalf("expected one create and one update entry")
	}
	if !f.pages.has("/about") {
		t.Fatalf("page not invalidated: %v", f.pages.paths)
	}
}

func TestMediaLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	editor := f.actor(t, "editor", auth.RoleEditor)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	body := []byte("\x89PNG fake image")
	m, err := f.svc.UploadMedia(ctx, editor, cms.Upload{
		Filename: "logo.png", ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if m.URL != cms.MediaPathPrefix+m.StorageKey || m.OriginalName != "logo.png" {
		t.Fatalf("unexpected media %+v", m)
	}
	redirect, rc, err := f.svc.OpenMedia(ctx, m.StorageKey)
	if err != nil || redirect != "" {
		t.Fatalf("open: %q %v", redirect, err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, body) {
		t.Fatalf("unexpected bytes %q", got)
	}

	_, err = f.svc.UploadMedia(ctx, editor, cms.Upload{Filename: "big.png", ContentType: "image/png", Size: 11 << 20, Body: bytes.NewReader(body)})
	if errMsg(err) != "File too large. Maximum size is 10MB" {
		t.Fatalf("oversize: got %v", err)
	}
	_, err = f.svc.UploadMedia(ctx, editor, cms.Upload{Filename: "run.exe", ContentType: "application/x-msdownload", Size: 4, Body: bytes.NewReader(body)})
	if errMsg(err) != "File type not allowed" {
		t.Fatalf("bad type: got %v", err)
	}

	if err := f.svc.DeleteMedia(ctx, editor, m.ID); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("editor lacks media:delete, got %v", err)
	}
	if err := f.svc.DeleteMedia(ctx, admin, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := f.svc.OpenMedia(ctx, m.StorageKey); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("object should be gone, got %v", err)
	}
}

func TestPercentages(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{cms.Percentage(0, 0), "0"},
		{cms.Percentage(3, 10), "30.0"},
		{cms.Percentage(1, 3), "33.3"},
		{cms.GrowthRate(5, 0), "100"},
		{cms.GrowthRate(0, 0), "0"},
		{cms.GrowthRate(6, 4), "50.0"},
		{cms.GrowthRate(2, 4), "-50.0"},
	}
	for i, c := range cases {
		if c.got != c.want {
			t.Fatalf("case %d: got %q, want %q", i, c.got, c.want)
		}
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		id, err := f.svc.SubmitContact(ctx, cms.ContactInput{Name: "Lead", Email: "lead@example.com", Message: "Hi"})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if i < 3 {
			won := cms.LeadWon
			if _, err := f.svc.UpdateLead(ctx, admin, id, cms.LeadPatch{Status: &won}); err != nil {
				t.Fatalf("update: %v", err)
			}
		}
	}
	stats, err := f.svc.Stats(ctx, admin)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.ConversionRate != "30.0" || stats.TotalLeads != 10 || stats.WonLeads != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.LeadsThisMonth != 10 || stats.LeadGrowth != "100" {
		t.Fatalf("unexpected monthly stats %+v", stats)
	}
	if stats.LeadsByStatus[cms.LeadLost] != 0 || stats.LeadsByStatus[cms.LeadNew] != 7 {
		t.Fatalf("unexpected breakdown %v", stats.LeadsByStatus)
	}
	if len(stats.RecentLeads) != cms.RecentLeadCount {
		t.Fatalf("expected %d recent leads, got %d", cms.RecentLeadCount, len(stats.RecentLeads))
	}

	viewer := f.actor(t, "viewer", auth.RoleViewer)
	if _, err := f.svc.Stats(ctx, viewer); err != nil {
		t.Fatalf("viewer can see dashboard: %v", err)
	}
}

func TestAuditLogsRequirePermission(t *testing.T) {
	f := newFixture(t, nil)
	editor := f.actor(t, "editor", auth.RoleEditor)
	admin := f.actor(t, "admin", auth.RoleAdmin)
	ctx := context.Background()

	if _, err := f.svc.AuditLogs(ctx, editor, audit.Filter{}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("editor lacks audit:view, got %v", err)
	}
	if _, err := f.svc.AuditLogs(ctx, admin, audit.Filter{Action: "rename"}); !errors.Is(err, cms.ErrInvalidInput) {
		t.Fatalf("unknown action: got %v", err)
	}
	_, _ = f.svc.SubmitContact(ctx, cms.ContactInput{Name: "A", Email: "a@example.com", Message: "m"})
	page, err := f.svc.AuditLogs(ctx, admin, audit.Filter{EntityType: cms.EntityLead})
	if err != nil || page.Total != 1 || page.Limit != 50 {
		t.Fatalf("unexpected page %+v (%v)", page, err)
	}
}
