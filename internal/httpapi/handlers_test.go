package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/obs"
	"beaconcms.org/internal/ratelimit"
	"beaconcms.org/internal/storage"
	"beaconcms.org/internal/store/memory"
)

const testPassword = "correct horse"

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
	clock   *time.Time
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	recorder := audit.NewRecorder(store)
	files, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	svc, err := cms.New(cms.Deps{Store: store, Audit: recorder, Storage: files, MaxUploadBytes: 1 << 20})
	if err != nil {
		t.Fatalf("cms.New: %v", err)
	}
	sessions, err := auth.NewSessions(store, recorder, time.Hour)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	clock := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ta := &testAPI{t: t, store: store, clock: &clock}
	limiter := ratelimit.NewFixedWindow(5, time.Minute).WithClock(func() time.Time { return *ta.clock })

	api, err := New(Deps{
		CMS:      svc,
		Sessions: sessions,
		Contact:  limiter,
		Options:  Options{Version: "test", RateBurst: 1000, RatePerSec: 1000, MaxUploadBytes: 1 << 20},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ta.handler = api.Handler()
	return ta
}

// seedUser stores an active user and returns a session cookie for them.
func (c *testAPI) seedUser(id, role string) *http.Cookie {
	c.t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		c.t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	err = c.store.Users().Create(context.Background(), &cms.User{
		ID: id, Email: id + "@beacon.test", Name: "User " + id, Role: role,
		IsActive: true, PasswordHash: hash, CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		c.t.Fatalf("seed user: %v", err)
	}
	rr := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": id + "@beacon.test", "password": testPassword,
	}, nil)
	if rr.Code != http.StatusOK {
		c.t.Fatalf("login %s: %d %s", id, rr.Code, rr.Body.String())
	}
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == "beacon_session" {
			return ck
		}
	}
	c.t.Fatalf("login did not set a session cookie")
	return nil
}

func (c *testAPI) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	c.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return body
}

func (c *testAPI) count(action audit.Action, entity string) int {
	n := 0
	for _, e := range c.store.AuditEntries() {
		if e.Action == action && e.EntityType == entity {
			n++
		}
	}
	return n
}

func TestBlogLifecycle(t *testing.T) {
	api := newTestAPI(t)
	editor := api.seedUser("editor1", auth.RoleEditor)
	admin := api.seedUser("admin1", auth.RoleAdmin)

	rr := api.do(http.MethodPost, "/api/admin/blog", map[string]any{
		"title":   "Launch Notes",
		"content": "We shipped.",
		"status":  "draft",
	}, editor)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	id, _ := decodeBody(t, rr)["id"].(string)
	if id == "" {
		t.Fatalf("create returned no id")
	}

	rr = api.do(http.MethodGet, "/api/admin/blog", nil, editor)
	list := decodeBody(t, rr)["data"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected one post, got %d", len(list))
	}
	post := list[0].(map[string]any)
	if post["status"] != "draft" || post["publishedAt"] != nil {
		t.Fatalf("unexpected draft: %v", post)
	}

	rr = api.do(http.MethodPut, "/api/admin/blog/"+id, map[string]any{"status": "published"}, editor)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("editor publish: expected 403, got %d", rr.Code)
	}
	rr = api.do(http.MethodGet, "/api/admin/blog/"+id, nil, editor)
	if got := decodeBody(t, rr)["data"].(map[string]any)["status"]; got != "draft" {
		t.Fatalf("post changed after forbidden publish: %v", got)
	}

	rr = api.do(http.MethodPut, "/api/admin/blog/"+id, map[string]any{"status": "published"}, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin publish: %d %s", rr.Code, rr.Body.String())
	}
	post = decodeBody(t, rr)["data"].(map[string]any)
	if post["status"] != "published" || post["publishedAt"] == nil {
		t.Fatalf("post not published: %v", post)
	}

	rr = api.do(http.MethodGet, "/api/public/blog", nil, nil)
	public := decodeBody(t, rr)["data"].([]any)
	if len(public) != 1 || public[0].(map[string]any)["slug"] != "launch-notes" {
		t.Fatalf("public list missing post: %v", public)
	}

	rr = api.do(http.MethodDelete, "/api/admin/blog/"+id, nil, admin)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}
	rr = api.do(http.MethodGet, "/api/public/blog/launch-notes", nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}

	var deleted *audit.Entry
	for _, e := range api.store.AuditEntries() {
		if e.Action == audit.ActionDelete && e.EntityType == cms.EntityPost {
			e := e
			deleted = &e
		}
	}
	if deleted == nil {
		t.Fatalf("no delete audit row")
	}
	var old map[string]any
	if err := json.Unmarshal(deleted.OldValue, &old); err != nil {
		t.Fatalf("old value: %v", err)
	}
	if old["title"] != "Launch Notes" || old["slug"] != "launch-notes" {
		t.Fatalf("delete snapshot incomplete: %v", old)
	}
}

func TestAdminRequiresSession(t *testing.T) {
	api := newTestAPI(t)
	rr := api.do(http.MethodGet, "/api/admin/leads", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != msgUnauthorized {
		t.Fatalf("unexpected body %v", body)
	}

	rr = api.do(http.MethodGet, "/api/admin/leads", nil, &http.Cookie{Name: "beacon_session", Value: "forged"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("forged cookie: expected 401, got %d", rr.Code)
	}
}

func TestForbiddenWriteLeavesNoAuditRow(t *testing.T) {
	api := newTestAPI(t)
	viewer := api.seedUser("viewer1", auth.RoleViewer)

	rr := api.do(http.MethodPost, "/api/admin/leads", map[string]any{"name": "Ada", "email": "ada@example.com"}, viewer)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if n := api.count(audit.ActionCreate, cms.EntityLead); n != 0 {
		t.Fatalf("expected no audit rows, got %d", n)
	}
}

func TestDuplicateSlugConflict(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin1", auth.RoleAdmin)

	body := map[string]any{"title": "Same Title", "content": "x"}
	if rr := api.do(http.MethodPost, "/api/admin/blog", body, admin); rr.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rr.Code)
	}
	rr := api.do(http.MethodPost, "/api/admin/blog", body, admin)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if n := api.count(audit.ActionCreate, cms.EntityPost); n != 1 {
		t.Fatalf("expected one create audit row, got %d", n)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin1", auth.RoleAdmin)

	rr := api.do(http.MethodPost, "/api/admin/blog", map[string]any{"content": "x"}, admin)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "title is required" {
		t.Fatalf("unexpected error %v", body["error"])
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/blog", bytes.NewReader([]byte("{")))
	req.AddCookie(admin)
	bad := httptest.NewRecorder()
	api.handler.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: expected 400, got %d", bad.Code)
	}
}

func TestSelfDeletionRejected(t *testing.T) {
	api := newTestAPI(t)
	root := api.seedUser("root1", auth.RoleSuperAdmin)

	rr := api.do(http.MethodDelete, "/api/admin/users/root1", nil, root)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestContactRateLimit(t *testing.T) {
	api := newTestAPI(t)
	form := map[string]any{"name": "Ada", "email": "ada@example.com", "message": "Hello"}

	for i := 0; i < 5; i++ {
		if rr := api.do(http.MethodPost, "/api/public/contact", form, nil); rr.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d %s", i+1, rr.Code, rr.Body.String())
		}
	}
	rr := api.do(http.MethodPost, "/api/public/contact", form, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("6th request: expected 429, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != msgRateLimited {
		t.Fatalf("unexpected body %v", body)
	}

	*api.clock = api.clock.Add(61 * time.Second)
	if rr := api.do(http.MethodPost, "/api/public/contact", form, nil); rr.Code != http.StatusCreated {
		t.Fatalf("after window: expected 201, got %d", rr.Code)
	}

	for _, e := range api.store.AuditEntries() {
		if e.EntityType == cms.EntityLead && e.UserID != nil {
			t.Fatalf("contact submissions must be anonymous: %+v", e)
		}
	}
}

func TestContactRateLimitIgnoresSpoofedForwarding(t *testing.T) {
	api := newTestAPI(t)
	body := []byte(`{"name":"Ada","email":"ada@example.com","message":"Hello"}`)

	send := func(i int) int {
		req := httptest.NewRequest(http.MethodPost, "/api/public/contact", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.101.%d", i))
		rr := httptest.NewRecorder()
		api.handler.ServeHTTP(rr, req)
		return rr.Code
	}
	for i := 1; i <= 5; i++ {
		if code := send(i); code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, code)
		}
	}
	if code := send(6); code != http.StatusTooManyRequests {
		t.Fatalf("rotating forwarding headers must share one bucket, got %d", code)
	}
	for _, e := range api.store.AuditEntries() {
		if e.EntityType == cms.EntityLead && e.IPAddress != "203.0.113.9" {
			t.Fatalf("audit ip taken from spoofed header: %q", e.IPAddress)
		}
	}
}

func TestPublicJobApply(t *testing.T) {
	api := newTestAPI(t)
	admin := api.seedUser("admin1", auth.RoleAdmin)

	rr := api.do(http.MethodPost, "/api/admin/jobs", map[string]any{
		"title": "Go Engineer", "department": "Engineering", "location": "Remote",
		"employmentType": "full-time", "description": "Build things", "status": "published",
	}, admin)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create job: %d %s", rr.Code, rr.Body.String())
	}

	rr = api.do(http.MethodPost, "/api/public/jobs/go-engineer/apply", map[string]any{
		"name": "Grace", "email": "grace@example.com",
	}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("apply: %d %s", rr.Code, rr.Body.String())
	}
	rr = api.do(http.MethodPost, "/api/public/jobs/missing/apply", map[string]any{
		"name": "Grace", "email": "grace@example.com",
	}, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("apply to missing job: expected 404, got %d", rr.Code)
	}

	rr = api.do(http.MethodGet, "/api/admin/applications", nil, admin)
	body := decodeBody(t, rr)
	items := body["data"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["jobTitle"] != "Go Engineer" {
		t.Fatalf("unexpected applications %v", items)
	}
	if p := body["pagination"].(map[string]any); p["total"] != float64(1) {
		t.Fatalf("unexpected pagination %v", p)
	}
}

func TestSessionEndpointAndLogout(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.seedUser("editor1", auth.RoleEditor)

	rr := api.do(http.MethodGet, "/api/auth/session", nil, cookie)
	sess, _ := decodeBody(t, rr)["session"].(map[string]any)
	if sess == nil {
		t.Fatalf("expected a session")
	}
	user := sess["user"].(map[string]any)
	if user["id"] != "editor1" || len(user["permissions"].([]any)) != len(auth.PermissionsForRole(auth.RoleEditor)) {
		t.Fatalf("unexpected session user %v", user)
	}

	if rr := api.do(http.MethodPost, "/api/auth/logout", nil, cookie); rr.Code != http.StatusOK {
		t.Fatalf("logout: %d", rr.Code)
	}
	rr = api.do(http.MethodGet, "/api/auth/session", nil, cookie)
	if decodeBody(t, rr)["session"] != nil {
		t.Fatalf("session survived logout")
	}
	if n := api.count(audit.ActionLogout, cms.EntityUser); n != 1 {
		t.Fatalf("expected one logout audit row, got %d", n)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	api := newTestAPI(t)
	api.seedUser("editor1", auth.RoleEditor)

	rr := api.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "EDITOR1@beacon.test", "password": "wrong password",
	}, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("failed login must not set a cookie")
	}
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	api := newTestAPI(t)
	rr := api.do(http.MethodGet, "/api/nope", nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] == nil || body["request_id"] == nil {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)
	if rr := api.do(http.MethodGet, "/healthz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	if rr := api.do(http.MethodGet, "/readyz", nil, nil); rr.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rr.Code)
	}
}

func TestReadyHidesPingError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := obs.SetLogger(zap.New(core))
	defer restore()

	store := memory.New()
	svc, err := cms.New(cms.Deps{Store: store, Audit: audit.NewRecorder(store)})
	if err != nil {
		t.Fatalf("cms.New: %v", err)
	}
	sessions, err := auth.NewSessions(store, nil, time.Hour)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	api, err := New(Deps{
		CMS:      svc,
		Sessions: sessions,
		Ready: CheckFunc(func(context.Context) error {
			return errors.New("dial tcp 10.1.2.3:5432: password authentication failed for user beacon")
		}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rr := httptest.NewRecorder()
	api.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "5432") || strings.Contains(rr.Body.String(), "password") {
		t.Fatalf("ping error leaked: %s", rr.Body.String())
	}
	if body := decodeBody(t, rr); body["status"] != "not_ready" {
		t.Fatalf("unexpected body %v", body)
	}
	if logs.FilterMessage("readiness check failed").Len() != 1 {
		t.Fatal("ping failure should be logged")
	}
}
