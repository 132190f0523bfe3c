package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/asset-desk-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/asset-desk-backend/internal/adapters/secondary/email"
	mongoAdapter "github.com/lorrc/asset-desk-backend/internal/adapters/secondary/mongo"
	"github.com/lorrc/asset-desk-backend/internal/adapters/secondary/postgres"
	redisAdapter "github.com/lorrc/asset-desk-backend/internal/adapters/secondary/redis"
	"github.com/lorrc/asset-desk-backend/internal/auth"
	"github.com/lorrc/asset-desk-backend/internal/config"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/lorrc/asset-desk-backend/internal/core/services"
	"github.com/lorrc/asset-desk-backend/internal/infrastructure/logging"
	"github.com/lorrc/asset-desk-backend/internal/jobs"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

// stores are the secondary adapters selected by STORE_DRIVER.
type stores struct {
	source  ports.RecordSource
	assets  ports.AssetRepository
	tickets ports.TicketRepository
	close   func()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	location := cfg.Location()

	// 3. Database pool and migrations. Postgres always holds user profiles.
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("database connection established")

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	healthChecks := map[string]httpAdapter.HealthChecker{
		"postgres": httpAdapter.HealthCheckFunc(pool.Ping),
	}

	// 4. Record store
	st, err := openStores(ctx, cfg, pool, logger, healthChecks)
	if err != nil {
		return err
	}
	defer st.close()

	// 5. Optional cache. A nil ports.Cache disables caching.
	var cache ports.Cache
	if cfg.Redis.Enabled {
		redisCache, err := redisAdapter.New(ctx,
			redisAdapter.WithAddress(cfg.Redis.Addr),
			redisAdapter.WithPassword(cfg.Redis.Password),
			redisAdapter.WithDB(cfg.Redis.DB),
			redisAdapter.WithKeyPrefix(cfg.App.Name+":"),
		)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		cache = redisCache
		healthChecks["redis"] = redisCache
		logger.Info("redis cache enabled", "addr", cfg.Redis.Addr)
	}

	// 6. Security & real-time components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// 7. Dependency Injection (Wiring the Hexagon)
	clock := services.Clock(services.SystemClock)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	userRepo := postgres.NewUserRepository(pool)
	notifier := email.NewMockSMTPNotifier(logger)

	authzService := services.NewAuthorizationService(userRepo)
	profileService := services.NewProfileService(userRepo, clock)
	adminService := services.NewAdminService(userRepo, authzService, logger)
	reportService := services.NewReportService(st.source, authzService, hub, location, clock, logger)
	dashboardService := services.NewDashboardService(st.source, userRepo, authzService, cache, hub,
		services.DashboardConfig{
			Location:    location,
			CacheTTL:    cfg.Redis.TTL,
			RecentLimit: cfg.Reports.RecentLimit,
		}, clock, logger)
	assetService := services.NewAssetService(st.assets, st.source, authzService, hub, clock, logger)
	ticketService := services.NewTicketService(st.tickets, st.source, authzService, notifier, hub, dashboardService, clock, logger)
	digestService := services.NewDigestService(st.source, notifier, location, clock, logger)

	if cfg.Reports.WatchDashboard {
		go watchDashboard(ctx, dashboardService, cfg.Reports.WatchRetryDelay, logger)
	}

	// 8. Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Reports.JobsEnabled {
		scheduler = jobs.NewScheduler(logger)
		if err := jobs.RegisterReportJobs(scheduler, cfg.Reports, dashboardService, digestService); err != nil {
			return err
		}
		scheduler.Start()
	}

	// 9. Router
	router := newRouter(ctx, cfg, logger, routerDeps{
		tokenManager: tokenManager,
		health:       httpAdapter.NewHealthHandler(healthChecks, cfg.App.Version),
		ws:           httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger),
		me:           httpAdapter.NewMeHandler(profileService, authzService, errorHandler, logger),
		dashboard:    httpAdapter.NewDashboardHandler(dashboardService, errorHandler, location, logger),
		report:       httpAdapter.NewReportHandler(reportService, errorHandler, location, logger),
		asset:        httpAdapter.NewAssetHandler(assetService, errorHandler, logger),
		ticket:       httpAdapter.NewTicketHandler(ticketService, errorHandler, logger),
		admin:        httpAdapter.NewAdminHandler(adminService, errorHandler, logger),
	})

	// 10. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
	ticketService.Shutdown()

	return nil
}

func openStores(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	logger *slog.Logger,
	healthChecks map[string]httpAdapter.HealthChecker,
) (*stores, error) {
	if cfg.Store.Driver != config.StoreDriverMongo {
		logger.Info("using postgres record store")
		return &stores{
			source:  postgres.NewRecordSource(pool, logger),
			assets:  postgres.NewAssetRepository(pool),
			tickets: postgres.NewTicketRepository(pool),
			close:   func() {},
		}, nil
	}

	client, err := mongoAdapter.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	if err := mongoAdapter.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	healthChecks["mongo"] = httpAdapter.HealthCheckFunc(func(ctx context.Context) error {
		return mongoAdapter.Ping(ctx, client)
	})

	logger.Info("using mongo record store", "database", cfg.Mongo.Database)
	return &stores{
		source:  mongoAdapter.NewRecordSource(db, logger),
		assets:  mongoAdapter.NewAssetRepository(db),
		tickets: mongoAdapter.NewTicketRepository(db),
		close: func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

// watchDashboard keeps the live chart subscription alive, resubscribing
// after the store drops it.
func watchDashboard(ctx context.Context, svc ports.DashboardService, retry time.Duration, logger *slog.Logger) {
	for {
		err := svc.Watch(ctx)
		if ctx.Err() != nil {
			return
		}

		logger.Warn("dashboard watch stopped, resubscribing", "error", err, "retry_in", retry)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

type routerDeps struct {
	tokenManager *auth.TokenManager
	health       *httpAdapter.HealthHandler
	ws           *httpAdapter.WebSocketHandler
	me           *httpAdapter.MeHandler
	dashboard    *httpAdapter.DashboardHandler
	report       *httpAdapter.ReportHandler
	asset        *httpAdapter.AssetHandler
	ticket       *httpAdapter.TicketHandler
	admin        *httpAdapter.AdminHandler
}

func newRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger, d routerDeps) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))

	exportLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.Enabled {
		general := mw.DefaultRateLimiterConfig()
		general.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		general.BurstSize = cfg.RateLimit.BurstSize
		r.Use(mw.NewRateLimiter(ctx, general).Middleware)

		export := mw.ExportRateLimiterConfig()
		export.RequestsPerSecond = cfg.RateLimit.ExportRPS
		export.BurstSize = cfg.RateLimit.ExportBurst
		exportLimit = mw.NewRateLimiter(ctx, export).PerUser
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	d.health.RegisterRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", d.ws.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(d.tokenManager))

			r.Route("/me", d.me.RegisterRoutes)
			r.Route("/dashboard", d.dashboard.RegisterRoutes)
			r.Route("/reports", func(r chi.Router) {
				d.report.RegisterRoutes(r)
				r.With(exportLimit).Get("/{type}/export", d.report.HandleExport)
			})
			r.Route("/assets", d.asset.RegisterRoutes)
			r.Route("/tickets", d.ticket.RegisterRoutes)
			r.Route("/admin", func(r chi.Router) {
				r.Use(mw.RequireRole(domain.RoleAdmin))
				d.admin.RegisterRoutes(r)
			})
		})
	})

	return r
}
