package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eedition-gateway/internal/api/http"
	"github.com/spec-kit/eedition-gateway/internal/api/http/handlers"
	"github.com/spec-kit/eedition-gateway/internal/auth"
	"github.com/spec-kit/eedition-gateway/internal/config"
	"github.com/spec-kit/eedition-gateway/internal/entitlement"
	"github.com/spec-kit/eedition-gateway/internal/events"
	"github.com/spec-kit/eedition-gateway/internal/observability"
	"github.com/spec-kit/eedition-gateway/internal/persistence"
	"github.com/spec-kit/eedition-gateway/internal/repository"
	"github.com/spec-kit/eedition-gateway/internal/service"
	"github.com/spec-kit/eedition-gateway/internal/token"
	"github.com/spec-kit/eedition-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	readerRepo := repository.NewReaderRepository(pool)

	// Capability collaborators are optional; a nil capability makes the
	// engine skip its rule instead of failing.
	var subs entitlement.SubscriptionCapability
	if cfg.Policy.SubscriptionsEnabled {
		subs = repository.NewSubscriptionRepository(pool)
	}
	var memberships entitlement.MembershipCapability
	if cfg.Policy.MembershipsEnabled {
		memberships = repository.NewMembershipRepository(pool)
	}
	engine := entitlement.NewEngine(readerRepo, subs, memberships)

	tokenStore := token.NewRedisStore(redis.Client)
	tokenManager := token.NewManager(tokenStore, cfg.Reader.TokenTTL(), metrics)

	sessionManager := auth.NewSessionManager(cfg.Session.JWTSecret, cfg.Session.TTLHours)
	identityMiddleware := auth.NewIdentityMiddleware(sessionManager, readerRepo, cfg.Session.CookieName)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartTokenRefreshWorker(dispatcher, tokenManager, logger)

	accessService := service.NewAccessService(*cfg, service.AccessDependencies{
		ReaderRepo: readerRepo,
		Engine:     engine,
		Tokens:     tokenManager,
		Sessions:   sessionManager,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics)
	redirectHandler := handlers.NewRedirectHandler(accessService)
	validateHandler := handlers.NewValidateHandler(accessService)
	hooksHandler := handlers.NewHooksHandler(accessService, cfg.Session.HookSecret)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           healthHandler,
		Redirect:         redirectHandler,
		Validate:         validateHandler,
		Hooks:            hooksHandler,
		Identity:         identityMiddleware,
		EEditionEndpoint: cfg.Reader.EndpointPath,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
