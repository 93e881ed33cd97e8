package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/treatplanner/internal/auth"
	"github.com/mmynk/treatplanner/internal/calendar"
	"github.com/mmynk/treatplanner/internal/config"
	"github.com/mmynk/treatplanner/internal/middleware"
	"github.com/mmynk/treatplanner/internal/reminder"
	"github.com/mmynk/treatplanner/internal/service"
	"github.com/mmynk/treatplanner/internal/storage/sqlite"
	"github.com/mmynk/treatplanner/pkg/api/apiconnect"
	"github.com/mmynk/treatplanner/pkg/logging"
)

const (
	tokenDuration   = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("Failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(getEnv("TREATS_CONFIG", "config.yaml"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenDuration)
	authorizer := auth.NewAuthorizer(cfg.AuthorizedEmails)
	if len(authorizer.Emails()) == 0 {
		slog.Warn("No authorized emails configured, all callers are read-only")
	}
	access := service.NewAccess(store, authorizer)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	interceptors := connect.WithInterceptors(
		middleware.NewMetricsInterceptor(registry),
		middleware.RequireAuth(jwtManager),
		middleware.NewLoggingInterceptor(),
	)

	mux := http.NewServeMux()

	// Register Connect services
	planPath, planHandler := apiconnect.NewPlanServiceHandler(service.NewPlanService(store, access, loc), interceptors)
	mux.Handle(planPath, planHandler)

	eventSvc := service.NewEventService(store, access)
	eventPath, eventHandler := apiconnect.NewEventServiceHandler(eventSvc, interceptors)
	mux.Handle(eventPath, eventHandler)

	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(service.NewLedgerService(store, access, loc, cfg.Currency), interceptors)
	mux.Handle(ledgerPath, ledgerHandler)

	userPath, userHandler := apiconnect.NewUserServiceHandler(service.NewUserService(store, access), interceptors)
	mux.Handle(userPath, userHandler)

	mux.Handle("GET /calendar.ics", calendar.NewHandler(store, jwtManager, cfg.Currency, loc))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if cfg.StaticDir != "" {
		handler, err := staticHandler(cfg.StaticDir)
		if err != nil {
			slog.Error("Failed to resolve static path", "error", err)
			os.Exit(1)
		}
		mux.Handle("/", handler)
	}

	var scheduler *reminder.Scheduler
	if cfg.ReminderCron != "" {
		job := reminder.NewJob(store, reminder.LogNotifier{Currency: cfg.Currency}, loc)
		scheduler, err = reminder.NewScheduler(job, cfg.ReminderCron, loc)
		if err != nil {
			slog.Error("Failed to schedule reminders", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization",
			"Content-Type",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
		},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         3600,
	})

	// h2c serves HTTP/2 without TLS for Connect streaming
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           h2c.NewHandler(loggingMiddleware(corsHandler.Handler(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Watch streams never finish on their own, so end them when shutdown begins.
	server.RegisterOnShutdown(eventSvc.Close)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		slog.Error("Failed to listen", "address", cfg.Listen, "error", err)
		os.Exit(1)
	}

	slog.Info("Connect server starting",
		"address", ln.Addr().String(),
		"timezone", loc.String(),
		"authorized_emails", len(authorizer.Emails()),
	)
	err = serve(ctx, server, ln, shutdownTimeout, func(ctx context.Context) {
		if scheduler != nil {
			scheduler.Stop(ctx)
		}
	})
	if err != nil {
		slog.Error("Server failed", "error", err)
		store.Close()
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// staticHandler serves files from dir, falling back to index.html for
// unknown paths so client-side routes load the app.
func staticHandler(dir string) (http.Handler, error) {
	staticDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	slog.Info("Serving static files", "path", staticDir)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+apiconnect.PackageName+".") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	}), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
