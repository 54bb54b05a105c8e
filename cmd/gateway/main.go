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
	"golang.org/x/sync/errgroup"

	"github.com/modelgate/modelgate/internal/app"
	"github.com/modelgate/modelgate/internal/auth"
	"github.com/modelgate/modelgate/internal/catalog"
	"github.com/modelgate/modelgate/internal/menu"
	"github.com/modelgate/modelgate/internal/observability"
	"github.com/modelgate/modelgate/internal/platform/cache"
	"github.com/modelgate/modelgate/internal/platform/db"
	"github.com/modelgate/modelgate/internal/rbac"
	"github.com/modelgate/modelgate/internal/shared"
	"github.com/modelgate/modelgate/internal/users"
	"github.com/modelgate/modelgate/jobs"
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
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	sessionManager := shared.NewSessionManager(redisClient, "modelgate_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	rateLimiter := shared.NewRateLimiter(redisClient, int64(cfg.APIRateLimit), cfg.APIRateWindow)
	auditLogger := shared.NewAuditLogger(dbpool)

	keyCodec, err := auth.NewKeyCodec(cfg.APIKeySecret)
	if err != nil {
		logger.Error("init key codec", slog.Any("error", err))
		os.Exit(1)
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, keyCodec)
	authHandler := auth.NewHandler(logger, authService, sessionManager)
	authenticator := auth.NewAuthenticator(logger, authService, auditLogger, metrics)

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, Metrics: metrics}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware, auditLogger)

	menuRepo := menu.NewRepository(dbpool)
	menuService := menu.NewService(menuRepo, rbacService)
	menuHandler := menu.NewHandler(logger, menuService, rbacMiddleware, auditLogger)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, rbacService)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		RateLimiter:    rateLimiter,
		Authenticator:  authenticator,
		AuthHandler:    authHandler,
		UsersHandler:   usersHandler,
		RBACHandler:    rbacHandler,
		MenuHandler:    menuHandler,
		CatalogHandler: catalogHandler,
		JobHandler:     jobHandler,
		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("gateway", slog.Any("error", err))
		os.Exit(1)
	}
}
