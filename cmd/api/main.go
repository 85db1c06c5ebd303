package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/cms"
	"beaconcms.org/internal/config"
	"beaconcms.org/internal/httpapi"
	"beaconcms.org/internal/obs"
	"beaconcms.org/internal/ratelimit"
	"beaconcms.org/internal/revalidate"
	"beaconcms.org/internal/storage"
	"beaconcms.org/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

const sessionPruneInterval = time.Hour

func main() {
	cfg, err := config.Load(os.Getenv("BEACON_CONFIG"))
	if err != nil {
		obs.Logger().Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		obs.Logger().Fatal("invalid config", zap.Error(err))
	}
	logger, err := obs.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		obs.Logger().Fatal("build logger", zap.Error(err))
	}
	obs.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := pg.Open(cfg.Database)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer store.Close()

	files, err := storage.FromConfig(ctx, cfg.Storage, cfg.S3)
	if err != nil {
		logger.Fatal("media storage", zap.Error(err))
	}

	pages := revalidate.NewNotifier()
	if cfg.Revalidate.URL != "" {
		pages.Add("webhook", revalidate.NewHTTP(cfg.Revalidate.URL, cfg.Revalidate.Secret, &http.Client{Timeout: 5 * time.Second}))
	}

	var contact ratelimit.Limiter = ratelimit.NewFixedWindow(cfg.Contact.Limit, cfg.Contact.Window)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("parse redis url", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		contact = ratelimit.NewRedis(rdb, cfg.Contact.Limit, cfg.Contact.Window, ratelimit.WithKeyPrefix("ratelimit:contact"))
		pages.Add("redis", revalidate.NewRedis(rdb))
	}

	recorder := audit.NewRecorder(store)
	svc, err := cms.New(cms.Deps{
		Store:          store,
		Audit:          recorder,
		Pages:          pages,
		Storage:        files,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	if err != nil {
		logger.Fatal("cms service", zap.Error(err))
	}
	sessions, err := auth.NewSessions(store, recorder, cfg.Session.TTL)
	if err != nil {
		logger.Fatal("session resolver", zap.Error(err))
	}

	api, err := httpapi.New(httpapi.Deps{
		CMS:      svc,
		Sessions: sessions,
		Contact:  contact,
		Ready:    httpapi.CheckFunc(store.Ping),
		Options: httpapi.Options{
			Version:        version,
			CookieName:     cfg.Session.CookieName,
			CookieSecure:   cfg.Session.Secure,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
			RateBurst:      cfg.HTTP.RateBurst,
			RatePerSec:     cfg.HTTP.RatePerSec,
			TrustedProxies: cfg.HTTP.TrustedProxies,
		},
	})
	if err != nil {
		logger.Fatal("http api", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go pruneSessions(ctx, sessions, logger)

	logger.Info("starting beacon-cms api",
		zap.String("version", version),
		zap.String("addr", srv.Addr),
		zap.String("storage", files.Name()),
		zap.Strings("revalidate_targets", pages.Targets()),
	)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("listen", zap.Error(err))
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}

func pruneSessions(ctx context.Context, sessions *auth.Sessions, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Prune(ctx)
			if err != nil {
				logger.Warn("session prune failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("expired sessions pruned", zap.Int64("count", n))
			}
		}
	}
}
