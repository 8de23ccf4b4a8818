package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/membership-portal/internal/api/http"
	"github.com/spec-kit/membership-portal/internal/api/http/handlers"
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/cache"
	"github.com/spec-kit/membership-portal/internal/clock"
	"github.com/spec-kit/membership-portal/internal/config"
	"github.com/spec-kit/membership-portal/internal/domain"
	"github.com/spec-kit/membership-portal/internal/events"
	"github.com/spec-kit/membership-portal/internal/fetch"
	"github.com/spec-kit/membership-portal/internal/observability"
	"github.com/spec-kit/membership-portal/internal/persistence"
	"github.com/spec-kit/membership-portal/internal/repository"
	"github.com/spec-kit/membership-portal/internal/scope"
	"github.com/spec-kit/membership-portal/internal/service"
	"github.com/spec-kit/membership-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	clk := clock.Real()
	pool := pg.PoolHandle()

	var ticketRepo repository.TicketRepository
	switch cfg.Portal.TicketStore {
	case config.TicketStorePostgres:
		ticketRepo = repository.NewTicketRepository(pool)
	default:
		memRepo, err := repository.NewMemoryTicketRepository()
		if err != nil {
			logger.Fatal("failed to init ticket store", zap.Error(err))
		}
		ticketRepo = memRepo
	}

	var memberSource fetch.PageSource
	switch cfg.Portal.MemberSource {
	case config.MemberSourcePostgres:
		memberSource = repository.NewMemberRepository(pool)
	default:
		memberSource = fetch.NewHTTPSource(cfg.Portal.MemberAPIURL, cfg.Portal.MemberAPITimeout())
	}

	var accountRepo repository.AccountRepository
	if pool != nil {
		accountRepo = repository.NewAccountRepository(pool)
	} else {
		accountRepo = repository.NewMemoryAccountRepository()
	}

	policy, err := auth.NewCapabilityPolicy()
	if err != nil {
		logger.Fatal("failed to load capability policy", zap.Error(err))
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Clock:      clk,
		Metrics:    metrics,
		Logger:     logger,
	})

	memberService := service.NewMemberService(service.MemberDependencies{
		Source:   memberSource,
		Resolver: scope.NewResolver(policy),
		Cache:    cache.NewSummaryCache(redis.ClientHandle(), cfg.Portal.ScopeCacheTTL()),
		PageSize: cfg.Portal.PageSize,
		Metrics:  metrics,
		Logger:   logger,
	})

	sessionService := service.NewSessionService(service.SessionDependencies{
		AccountRepo: accountRepo,
		Tokens:      tokens,
		Limiter:     auth.NewIPRateLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst),
		BcryptCost:  cfg.Auth.BcryptCost,
		Logger:      logger,
	})
	bootstrap := domain.Identity{Role: domain.RoleAdmin, Name: cfg.Auth.BootstrapAdminName}
	if err := sessionService.EnsureAccount(ctx, bootstrap, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPass); err != nil {
		logger.Fatal("failed to provision bootstrap admin", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Session:           handlers.NewSessionHandler(sessionService),
		Tickets:           handlers.NewTicketsHandler(ticketService),
		Members:           handlers.NewMembersHandler(memberService, clk),
		SessionMiddleware: auth.NewSessionMiddleware(tokens, logger),
		Gate:              auth.NewGate(cfg.Auth.SignInPath),
		Policy:            policy,
		Metrics:           metrics,
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
