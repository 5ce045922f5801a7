package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teamdesk/internal/domain/attendance"
	"teamdesk/internal/domain/audit"
	"teamdesk/internal/domain/auth"
	"teamdesk/internal/domain/core"
	"teamdesk/internal/domain/expenses"
	"teamdesk/internal/domain/leave"
	"teamdesk/internal/domain/notifications"
	"teamdesk/internal/domain/projects"
	"teamdesk/internal/platform/config"
	"teamdesk/internal/platform/db"
	"teamdesk/internal/platform/email"
	"teamdesk/internal/platform/jobs"
	"teamdesk/internal/platform/metrics"
	attendancehandler "teamdesk/internal/transport/http/handlers/attendance"
	audithandler "teamdesk/internal/transport/http/handlers/audit"
	authhandler "teamdesk/internal/transport/http/handlers/auth"
	corehandler "teamdesk/internal/transport/http/handlers/core"
	expensehandler "teamdesk/internal/transport/http/handlers/expenses"
	leavehandler "teamdesk/internal/transport/http/handlers/leave"
	navigationhandler "teamdesk/internal/transport/http/handlers/navigation"
	notificationhandler "teamdesk/internal/transport/http/handlers/notifications"
	projecthandler "teamdesk/internal/transport/http/handlers/projects"
	"teamdesk/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	jobs *jobs.Service
}

// New builds a fully wired application without starting the listener.
// Callers own the pool lifetime through Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		migrationsDir := cfg.MigrationsDir
		if migrationsDir == "" {
			migrationsDir = "migrations"
		}
		if err := db.Migrate(ctx, pool, migrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	coreStore := core.NewStore(pool)
	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	notifySvc := notifications.New(pool, email.New(cfg), cfg.EmailFrom)
	projectSvc := projects.NewService(projects.NewStore(pool))
	attendanceSvc := attendance.NewService(attendance.NewStore(pool))
	leaveSvc := leave.NewService(leave.NewStore(pool))
	expenseSvc := expenses.NewService(expenses.NewStore(pool))

	collector := metrics.New()
	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

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
		router.Get("/metricsz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		corehandler.NewHandler(coreStore, auditSvc, notifySvc).RegisterRoutes(r)
		projecthandler.NewHandler(projectSvc, coreStore, auditSvc, notifySvc).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, coreStore).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, coreStore, auditSvc, notifySvc).RegisterRoutes(r)
		expensehandler.NewHandler(expenseSvc, coreStore, auditSvc, notifySvc).RegisterRoutes(r)
		navigationhandler.NewHandler().RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
		notificationhandler.NewHandler(notifySvc).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:  cfg,
		DB:      pool,
		Router:  router,
		Metrics: collector,
		jobs:    jobs.New(pool, cfg, attendanceSvc),
	}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.jobs.Start(ctx)

	log.Printf("teamdesk server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
