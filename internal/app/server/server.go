package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scorecard/internal/domain/appraisal"
	"scorecard/internal/domain/audit"
	"scorecard/internal/domain/auth"
	"scorecard/internal/domain/notifications"
	"scorecard/internal/domain/reports"
	"scorecard/internal/domain/scorecard"
	"scorecard/internal/platform/config"
	"scorecard/internal/platform/db"
	"scorecard/internal/platform/email"
	"scorecard/internal/platform/jobs"
	"scorecard/internal/platform/metrics"
	appraisalhandler "scorecard/internal/transport/http/handlers/appraisal"
	authhandler "scorecard/internal/transport/http/handlers/auth"
	notificationshandler "scorecard/internal/transport/http/handlers/notifications"
	reportshandler "scorecard/internal/transport/http/handlers/reports"
	scorecardhandler "scorecard/internal/transport/http/handlers/scorecard"
	"scorecard/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	mailer := email.New(cfg)

	notifyStore := notifications.NewStore(pool)
	notifySvc := notifications.New(notifyStore, mailer)
	notifySvc.DefaultFrom = cfg.EmailFrom

	appraisalSvc := appraisal.NewService(appraisal.NewStore(pool))

	scorecardSvc := scorecard.NewService(scorecard.NewStore(pool))
	scorecardSvc.SnapshotMaxAge = cfg.SnapshotMaxAge

	reportsSvc := reports.NewService(reports.NewStore(pool))
	jobsSvc := jobs.New(pool, cfg, notifySvc)
	idemStore := middleware.NewIdempotencyStore(pool)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	// Auth only decorates the context, so it sits ahead of the logger to
	// give access-log lines and rate-limit keys the acting user.
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(metricsMiddleware(collector))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).
			Get("/metrics", metricsHandler(collector))
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalSvc, authStore, notifySvc, auditSvc, idemStore).RegisterRoutes(r)
		scorecardhandler.NewHandler(scorecardSvc, authStore, notifySvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, authStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, authStore, auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobsSvc}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	ctx := context.Background()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	slog.Info("scorecard server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func metricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			collector.Record(recorder.status, time.Since(start))
		})
	}
}

func metricsHandler(collector *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(collector.Snapshot()); err != nil {
			slog.Warn("metrics encode failed", "err", err)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
