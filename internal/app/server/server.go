package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"luchwallet/internal/domain/audit"
	"luchwallet/internal/domain/auth"
	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/platform/config"
	"luchwallet/internal/platform/db"
	"luchwallet/internal/platform/metrics"
	"luchwallet/internal/transport/http/api"
	authhandler "luchwallet/internal/transport/http/handlers/auth"
	cardhandler "luchwallet/internal/transport/http/handlers/card"
	employeehandler "luchwallet/internal/transport/http/handlers/employees"
	"luchwallet/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires the whole application: pool, migrations, seed data, services
// and the router. Callers own the returned pool via app.DB.
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

	if err := db.Seed(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	walletSvc := wallet.NewService(wallet.NewStore(pool), logger)
	adminStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

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

	router.Route("/api", func(r chi.Router) {
		loginHandler := authhandler.NewHandler(walletSvc, adminStore, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/login", loginHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(adminStore, cfg.JWTSecret))
			employeehandler.NewHandler(walletSvc, auditSvc, cfg.UploadDir, cfg.PublicUploadPath).RegisterRoutes(r)
			r.Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
			r.Get("/admin/audit", func(w http.ResponseWriter, req *http.Request) {
				reqID := middleware.GetRequestID(req.Context())
				q := req.URL.Query()
				filter := audit.Filter{
					Action:     q.Get("action"),
					EntityType: q.Get("entity"),
					ActorLogin: q.Get("actor"),
				}
				limit := 50
				if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 500 {
					limit = v
				}
				offset := 0
				if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
					offset = v
				}
				events, err := auditSvc.List(req.Context(), filter, q.Get("details") == "true", limit, offset)
				if err != nil {
					api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", reqID)
					return
				}
				total, err := auditSvc.Count(req.Context(), filter)
				if err != nil {
					api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", reqID)
					return
				}
				api.Success(w, map[string]any{"events": events, "total": total}, reqID)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.EmployeeAuth(walletSvc, cfg.JWTSecret))
			cardhandler.NewHandler(walletSvc).RegisterRoutes(r)
		})
	})

	uploadPrefix := cfg.PublicUploadPath
	if uploadPrefix == "" {
		uploadPrefix = "/uploads"
	}
	router.Handle(uploadPrefix+"/*", http.StripPrefix(uploadPrefix+"/", http.FileServer(http.Dir(cfg.UploadDir))))

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.DB.Close()

	log.Printf("wallet server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// spaHandler serves the mini app front-end, falling back to index.html for
// client side routes.
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
