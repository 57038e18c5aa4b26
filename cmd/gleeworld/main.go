package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gleeworld/gleeworld/internal/app"
	"github.com/gleeworld/gleeworld/internal/dashboard"
	"github.com/gleeworld/gleeworld/internal/grants"
	"github.com/gleeworld/gleeworld/internal/guard"
	"github.com/gleeworld/gleeworld/internal/identity"
	"github.com/gleeworld/gleeworld/internal/members"
	"github.com/gleeworld/gleeworld/internal/observability"
	"github.com/gleeworld/gleeworld/internal/platform/cache"
	"github.com/gleeworld/gleeworld/internal/platform/db"
	"github.com/gleeworld/gleeworld/internal/profiles"
	"github.com/gleeworld/gleeworld/internal/shared"
	"github.com/gleeworld/gleeworld/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "gleeworld_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	identityRepo := identity.NewRepository(dbpool)
	identityService := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(logger, identityService, sessionManager, csrfManager)

	profileRepo := profiles.NewRepository(dbpool)
	profileLoader := profiles.NewLoader(profileRepo, redisClient, logger, cfg.ProfileCacheTTL)
	go profileLoader.WatchInvalidations(ctx)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	grantRepo := grants.NewRepository(dbpool)
	grantService := grants.NewService(grantRepo, auditLogger, jobClient, logger)
	grantsHandler := grants.NewHandler(logger, grantService)

	metrics := observability.NewMetrics()

	accessGuard := guard.Middleware{
		Profiles: profileLoader,
		Grants:   grantService,
		Logger:   logger,
		Metrics:  metrics,
	}

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(profileLoader, grantService, dashboardRepo, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	memberRepo := members.NewRepository(dbpool)
	memberService := members.NewService(memberRepo, auditLogger, profileLoader, logger)
	membersHandler := members.NewHandler(logger, memberService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Guard:            accessGuard,
		IdentityHandler:  identityHandler,
		DashboardHandler: dashboardHandler,
		GrantsHandler:    grantsHandler,
		MembersHandler:   membersHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
