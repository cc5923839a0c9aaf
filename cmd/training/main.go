package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	trhttp "github.com/ERPlora/module-training/internal/adapter/http"
	trnats "github.com/ERPlora/module-training/internal/adapter/nats"
	"github.com/ERPlora/module-training/internal/adapter/natskv"
	"github.com/ERPlora/module-training/internal/adapter/otel"
	"github.com/ERPlora/module-training/internal/adapter/postgres"
	"github.com/ERPlora/module-training/internal/adapter/ristretto"
	"github.com/ERPlora/module-training/internal/adapter/tiered"
	"github.com/ERPlora/module-training/internal/adapter/ws"
	"github.com/ERPlora/module-training/internal/config"
	"github.com/ERPlora/module-training/internal/export"
	"github.com/ERPlora/module-training/internal/logger"
	"github.com/ERPlora/module-training/internal/middleware"
	"github.com/ERPlora/module-training/internal/port/broadcast"
	"github.com/ERPlora/module-training/internal/port/cache"
	"github.com/ERPlora/module-training/internal/port/messagequeue"
	"github.com/ERPlora/module-training/internal/secrets"
	"github.com/ERPlora/module-training/internal/service"
)

// dashboardBucket is the shared KV bucket holding cached dashboard counts.
const dashboardBucket = "training_dashboard"

const jwtSecretKey = "jwt_secret"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"file", cfgPath,
		"port", cfg.Server.Port,
		"base_path", cfg.Server.BasePath,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---

	shutdownOtel, err := otel.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownOtel(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()
	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if cfg.Postgres.AutoMigrate {
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied")
	}

	local, err := ristretto.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer local.Close()

	// NATS is optional: without it changes stay local to this instance.
	var (
		queue      messagequeue.Queue
		natsQueue  *trnats.Queue
		summaryTTL = cfg.Cache.DashboardTTL
		counts     cache.Cache = local
	)
	if cfg.NATS.URL != "" {
		natsQueue, err = trnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := natsQueue.Close(); err != nil {
				slog.Warn("nats close", "error", err)
			}
		}()
		queue = natsQueue

		kv, err := natsQueue.KeyValue(ctx, dashboardBucket, summaryTTL)
		if err != nil {
			return fmt.Errorf("nats kv: %w", err)
		}
		counts = tiered.New(local, natskv.New(kv), summaryTTL)
	} else {
		slog.Warn("nats disabled, change events stay local")
	}

	hub := ws.NewHub(originHost(cfg.Server.CORSOrigin))
	defer hub.Close()

	// --- Services ---

	store := postgres.NewStore(pool)
	notify := service.NewNotifier(broadcast.Broadcaster(hub), queue, metrics)
	dashboard := service.NewDashboardService(store, counts, summaryTTL, metrics)
	notify.OnChange(dashboard.Invalidate)

	if queue != nil {
		cancelSub, err := notify.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("change subscriber: %w", err)
		}
		defer cancelSub()
	}

	handlers := &trhttp.Handlers{
		Programs:     service.NewProgramService(store, notify, metrics),
		Skills:       service.NewSkillService(store, notify, metrics),
		Enrollments:  service.NewEnrollmentService(store, notify, metrics),
		Dashboard:    dashboard,
		Settings:     service.NewSettingsService(),
		DB:           store,
		Exports:      export.NewSlots(cfg.Rate.ExportConcurrent, cfg.Rate.ExportWait),
		MaxFormBytes: cfg.Server.MaxFormBytes,
	}
	if natsQueue != nil {
		handlers.Queue = natsQueue
	}

	// --- HTTP ---

	sessions, vault, err := newSessions(cfg.Auth)
	if err != nil {
		return err
	}
	exportLimit := middleware.NewRateLimiter(cfg.Rate.ExportPerSecond, cfg.Rate.ExportBurst, middleware.ByTenant)
	exportLimit.StartCleanup(ctx, cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(trhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(trhttp.SecurityHeaders)
	r.Use(trhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(otel.HTTPMiddleware(cfg.Telemetry.ServiceName))

	trhttp.MountRoutes(r, handlers, trhttp.Routes{
		BasePath: cfg.Server.BasePath,
		Auth: func(next http.Handler) http.Handler {
			return sessions.Require(chimw.Timeout(cfg.Server.RequestTimeout)(next))
		},
		ExportLimit: exportLimit.Handler,
		WS:          hub.HandleWS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if vault != nil {
		g.Go(func() error {
			reloadOnHangup(gctx, vault)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		hub.Close()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// originHost turns the configured CORS origin into a websocket origin
// pattern, which matches on host only.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// newSessions builds the session verifier. With a secret file configured the
// secret lives in a vault that reloadOnHangup refreshes.
func newSessions(cfg config.Auth) (*middleware.Sessions, *secrets.Vault, error) {
	sessions := middleware.NewSessions(cfg)
	if cfg.SecretFile == "" {
		return sessions, nil, nil
	}
	vault, err := secrets.NewVault(secrets.FileLoader(jwtSecretKey, cfg.SecretFile))
	if err != nil {
		return nil, nil, fmt.Errorf("load jwt secret: %w", err)
	}
	return sessions.WithSecret(vault.Bytes(jwtSecretKey)), vault, nil
}

// reloadOnHangup re-reads the vault on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, vault *secrets.Vault) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := vault.Reload(); err != nil {
				slog.Error("jwt secret reload failed, keeping previous", "error", err)
				continue
			}
			slog.Info("jwt secret reloaded", "secret", vault.Redacted(jwtSecretKey))
		}
	}
}
