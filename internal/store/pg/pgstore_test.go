package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
)

var ts = time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var leadCols = []string{"id", "name", "email", "company", "phone", "message", "source", "status",
	"assigned_to", "assignee_name", "notes", "created_at", "updated_at"}

func TestLeadGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`select .+ from leads l left join users u on u.id = l.assigned_to where l.id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Leads().Get(context.Background(), "missing")
	if !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestListLeadsBuildsFilters(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`select count\(\*\) from leads l where l.status = \$1 and \(l.name ilike \$2 or l.email ilike \$2 or l.company ilike \$2\)`).
		WithArgs("new", "%acme%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`order by l.created_at desc, l.id desc limit \$3 offset \$4`).
		WithArgs("new", "%acme%", 20, 20).
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow("l1", "Ada", "ada@acme.io", "Acme", nil, "Hi", "contact_form", "new", "u1", "Sam", nil, ts, ts))

	items, total, err := store.Leads().List(context.Background(), cms.LeadFilter{
		Status: "new",
		Search: "acme",
		Paging: cms.Paging{Page: 2, Limit: 20},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 21 || len(items) != 1 {
		t.Fatalf("unexpected result total=%d items=%d", total, len(items))
	}
	lead := items[0]
	if lead.Company == nil || *lead.Company != "Acme" || lead.Phone != nil {
		t.Fatalf("nullable columns not mapped: %+v", lead)
	}
	if lead.AssigneeName == nil || *lead.AssigneeName != "Sam" {
		t.Fatalf("assignee name not mapped: %+v", lead)
	}
	expectMet(t, mock)
}

func TestPostCreateUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`insert into blog_posts`).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Posts().Create(context.Background(), &cms.BlogPost{ID: "p1", Slug: "hello", Tags: []string{"go"}})
	if !errors.Is(err, cms.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	expectMet(t, mock)
}

func TestPostTagsDecoded(t *testing.T) {
	store, mock := newMockStore(t)
	cols := []string{"id", "title", "slug", "excerpt", "content", "cover_image", "category", "tags",
		"status", "author_id", "author_name", "seo_title", "seo_description", "published_at", "created_at", "updated_at"}
	mock.ExpectQuery(`from blog_posts p left join users u on u.id = p.author_id where p.slug = \$1`).
		WithArgs("hello").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", "Hello", "hello", nil, "Body", nil, "news", `["go","cms"]`, "published",
				"u1", "Ada", nil, nil, ts, ts, ts))

	post, err := store.Posts().GetBySlug(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if len(post.Tags) != 2 || post.Tags[1] != "cms" {
		t.Fatalf("unexpected tags %v", post.Tags)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(ts) {
		t.Fatalf("published_at not mapped: %v", post.PublishedAt)
	}
	expectMet(t, mock)
}

func TestUserUpdateWritesOnlyChangedColumns(t *testing.T) {
	store, mock := newMockStore(t)
	name, active := "New Name", false
	mock.ExpectExec(`update users set name = \$1, is_active = \$2, updated_at = \$3 where id = \$4`).
		WithArgs("New Name", false, ts, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Users().Update(context.Background(), "u1", cms.UserChanges{Name: &name, IsActive: &active, UpdatedAt: ts})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	expectMet(t, mock)
}

func TestDeleteMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`delete from jobs where id = \$1`).
		WithArgs("j1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Jobs().Delete(context.Background(), "j1"); !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestApplicationForeignKeyViolation(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(`insert into job_applications`).
		WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	err := store.Applications().Create(context.Background(), &cms.JobApplication{ID: "a1", JobID: "gone"})
	if !errors.Is(err, cms.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestFindSession(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`from sessions s\s+join users u on u.id = s.user_id\s+where s.token_hash = \$1`).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "name", "role", "is_active", "expires_at", "permissions"}).
			AddRow("u1", "ada@example.com", "Ada", "editor", true, ts, `["blog:create","blog:view"]`))

	lookup, err := store.FindSession(context.Background(), "hash")
	if err != nil {
		t.Fatalf("FindSession: %v", err)
	}
	if lookup.UserID != "u1" || !lookup.IsActive || len(lookup.Permissions) != 2 {
		t.Fatalf("unexpected lookup %+v", lookup)
	}

	mock.ExpectQuery(`from sessions s`).WithArgs("other").WillReturnError(sql.ErrNoRows)
	if _, err := store.FindSession(context.Background(), "other"); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected auth.ErrNotFound, got %v", err)
	}
	expectMet(t, mock)
}

func TestDeleteSessionReturnsUser(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`delete from sessions where token_hash = \$1 returning user_id`).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

	uid, err := store.DeleteSession(context.Background(), "hash")
	if err != nil || uid != "u1" {
		t.Fatalf("DeleteSession: %q %v", uid, err)
	}
	expectMet(t, mock)
}

func TestAppendAuditStoresNullSnapshots(t *testing.T) {
	store, mock := newMockStore(t)
	uid := "u1"
	mock.ExpectExec(`insert into audit_logs`).
		WithArgs("e1", "u1", "create", "lead", "l1", nil, `{"name":"Ada"}`, "203.0.113.1", "ua", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.AppendAudit(context.Background(), &audit.Entry{
		ID: "e1", UserID: &uid, Action: audit.ActionCreate, EntityType: "lead", EntityID: "l1",
		NewValue: []byte(`{"name":"Ada"}`), IPAddress: "203.0.113.1", UserAgent: "ua", CreatedAt: ts,
	})
	if err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	expectMet(t, mock)
}

func TestListAudit(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(`select count\(\*\) from audit_logs a where a.action = \$1`).
		WithArgs("delete").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`order by a.created_at desc, a.id desc limit \$2 offset \$3`).
		WithArgs("delete", 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_name", "action", "entity_type", "entity_id",
			"old_value", "new_value", "ip_address", "user_agent", "created_at"}).
			AddRow("e1", "u1", "Ada", "delete", "job", "j1", `{"title":"Engineer"}`, nil, "", "", ts))

	items, total, err := store.ListAudit(context.Background(), audit.Filter{Action: audit.ActionDelete, Page: 1, Limit: 50})
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	if total != 1 || items[0].Action != audit.ActionDelete || string(items[0].OldValue) != `{"title":"Engineer"}` {
		t.Fatalf("unexpected entries %+v", items)
	}
	if items[0].NewValue != nil {
		t.Fatalf("expected nil new value, got %s", items[0].NewValue)
	}
	expectMet(t, mock)
}
