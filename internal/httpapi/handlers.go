// Package httpapi exposes the admin, public and operational HTTP endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/obs"
	"beaconcms.org/internal/ratelimit"
)

// ReadyChecker reports whether backing services are reachable.
type ReadyChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function, typically a DB ping, to ReadyChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// Options are the transport settings taken from config.
type Options struct {
	Version        string
	CookieName     string
	CookieSecure   bool
	AllowedOrigins []string
	MaxBodyBytes   int64
	MaxUploadBytes int64
	RateBurst      int
	RatePerSec     int
	TrustedProxies []string
}

type Deps struct {
	CMS      *cms.Service
	Sessions *auth.Sessions
	// Contact throttles the public contact form per client IP.
	Contact ratelimit.Limiter
	Ready   ReadyChecker
	Options Options
}

// API is the HTTP layer.
type API struct {
	router   *mux.Router
	cms      *cms.Service
	sessions *auth.Sessions
	contact  ratelimit.Limiter
	ready    ReadyChecker
	proxies  TrustedProxies
	opts     Options
}

func New(d Deps) (*API, error) {
	if d.CMS == nil {
		return nil, errors.New("httpapi: cms service is required")
	}
	if d.Sessions == nil {
		return nil, errors.New("httpapi: session resolver is required")
	}
	if d.Contact == nil {
		d.Contact = ratelimit.NewFixedWindow(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	if d.Ready == nil {
		d.Ready = CheckFunc(nil)
	}
	if d.Options.CookieName == "" {
		d.Options.CookieName = "beacon_session"
	}
	if d.Options.MaxBodyBytes <= 0 {
		d.Options.MaxBodyBytes = 1 << 20
	}
	proxies, err := ParseTrustedProxies(d.Options.TrustedProxies)
	if err != nil {
		return nil, err
	}
	a := &API{
		router:   mux.NewRouter(),
		cms:      d.CMS,
		sessions: d.Sessions,
		contact:  d.Contact,
		ready:    d.Ready,
		proxies:  proxies,
		opts:     d.Options,
	}
	a.routes()
	return a, nil
}

// Handler returns the router wrapped in the global middleware chain.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.router
	h = MaxBodyBytes(h, a.bodyLimit())
	h = CORS(h, a.opts.AllowedOrigins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	return RequestID(h, a.proxies)
}

// bodyLimit leaves room for multipart framing around the largest allowed upload.
func (a *API) bodyLimit() int64 {
	if up := a.opts.MaxUploadBytes + 1<<20; up > a.opts.MaxBodyBytes {
		return up
	}
	return a.opts.MaxBodyBytes
}

func (a *API) routes() {
	r := a.router
	r.Use(Instrument)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/healthz", a.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.Ready).Methods(http.MethodGet)
	r.Handle("/metrics", obs.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/media/{key}", a.serveMedia).Methods(http.MethodGet, http.MethodHead)

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)
	authR.HandleFunc("/logout", a.handleLogout).Methods(http.MethodPost)
	authR.HandleFunc("/session", a.handleSession).Methods(http.MethodGet)

	pub := r.PathPrefix("/api/public").Subrouter()
	pub.HandleFunc("/blog", a.publicPosts).Methods(http.MethodGet)
	pub.HandleFunc("/blog/{slug}", a.publicPost).Methods(http.MethodGet)
	pub.HandleFunc("/jobs", a.publicJobs).Methods(http.MethodGet)
	pub.HandleFunc("/jobs/{slug}", a.publicJob).Methods(http.MethodGet)
	pub.HandleFunc("/jobs/{slug}/apply", a.publicApply).Methods(http.MethodPost)
	pub.HandleFunc("/contact", a.publicContact).Methods(http.MethodPost)
	pub.HandleFunc("/settings", a.publicSettings).Methods(http.MethodGet)
	pub.HandleFunc("/content/{page}", a.publicContent).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return RateLimit(next, a.opts.RateBurst, a.opts.RatePerSec)
	})
	admin.Use(a.withSession)

	admin.HandleFunc("/dashboard", a.dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/roles", a.listRoles).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", a.auditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/profile", a.getProfile).Methods(http.MethodGet)
	admin.HandleFunc("/profile", a.updateProfile).Methods(http.MethodPut)

	admin.HandleFunc("/leads", a.listLeads).Methods(http.MethodGet)
	admin.HandleFunc("/leads", a.createLead).Methods(http.MethodPost)
	admin.HandleFunc("/leads/{id}", a.getLead).Methods(http.MethodGet)
	admin.HandleFunc("/leads/{id}", a.updateLead).Methods(http.MethodPut)
	admin.HandleFunc("/leads/{id}", a.deleteLead).Methods(http.MethodDelete)

	admin.HandleFunc("/blog", a.listPosts).Methods(http.MethodGet)
	admin.HandleFunc("/blog", a.createPost).Methods(http.MethodPost)
	admin.HandleFunc("/blog/{id}", a.getPost).Methods(http.MethodGet)
	admin.HandleFunc("/blog/{id}", a.updatePost).Methods(http.MethodPut)
	admin.HandleFunc("/blog/{id}", a.deletePost).Methods(http.MethodDelete)

	admin.HandleFunc("/jobs", a.listJobs).Methods(http.MethodGet)
	admin.HandleFunc("/jobs", a.createJob).Methods(http.MethodPost)
	admin.HandleFunc("/jobs/{id}", a.getJob).Methods(http.MethodGet)
	admin.HandleFunc("/jobs/{id}", a.updateJob).Methods(http.MethodPut)
	admin.HandleFunc("/jobs/{id}", a.deleteJob).Methods(http.MethodDelete)

	admin.HandleFunc("/applications", a.listApplications).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id}", a.getApplication).Methods(http.MethodGet)
	admin.HandleFunc("/applications/{id}", a.updateApplication).Methods(http.MethodPut)
	admin.HandleFunc("/applications/{id}", a.deleteApplication).Methods(http.MethodDelete)

	admin.HandleFunc("/users", a.listUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", a.createUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", a.getUser).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", a.updateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}", a.deleteUser).Methods(http.MethodDelete)

	admin.HandleFunc("/media", a.listMedia).Methods(http.MethodGet)
	admin.HandleFunc("/media", a.uploadMedia).Methods(http.MethodPost)
	admin.HandleFunc("/media/{id}", a.getMedia).Methods(http.MethodGet)
	admin.HandleFunc("/media/{id}", a.updateMedia).Methods(http.MethodPut)
	admin.HandleFunc("/media/{id}", a.deleteMedia).Methods(http.MethodDelete)

	admin.HandleFunc("/settings", a.listSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", a.createSetting).Methods(http.MethodPost)
	admin.HandleFunc("/settings/{key}", a.getSetting).Methods(http.MethodGet)
	admin.HandleFunc("/settings/{key}", a.updateSetting).Methods(http.MethodPut)
	admin.HandleFunc("/settings/{key}", a.deleteSetting).Methods(http.MethodDelete)

	admin.HandleFunc("/content", a.listContent).Methods(http.MethodGet)
	admin.HandleFunc("/content", a.upsertContent).Methods(http.MethodPost, http.MethodPut)
	admin.HandleFunc("/content/{id}", a.getContent).Methods(http.MethodGet)
	admin.HandleFunc("/content/{id}", a.deleteContent).Methods(http.MethodDelete)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "beacon-cms",
		"version": a.opts.Version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.ready.Check(ctx); err != nil {
		obs.Logger().Warn("readiness check failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
