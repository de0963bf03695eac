package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/frigelar/esteira/internal/api/http"
	"github.com/frigelar/esteira/internal/api/http/handlers"
	"github.com/frigelar/esteira/internal/auth"
	"github.com/frigelar/esteira/internal/cache"
	"github.com/frigelar/esteira/internal/config"
	"github.com/frigelar/esteira/internal/events"
	"github.com/frigelar/esteira/internal/observability"
	"github.com/frigelar/esteira/internal/persistence"
	"github.com/frigelar/esteira/internal/qualitor"
	"github.com/frigelar/esteira/internal/repository"
	"github.com/frigelar/esteira/internal/service"
	"github.com/frigelar/esteira/internal/session"
	"github.com/frigelar/esteira/internal/sheets"
	"github.com/frigelar/esteira/internal/worker"
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

	sheetsClient, err := sheets.NewGoogleClient(ctx, cfg.Sheets)
	if err != nil {
		logger.Fatal("failed to build sheets client", zap.Error(err))
	}

	tables, err := sheets.Bootstrap(ctx, sheetsClient, cfg.Sheets, logger)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if hint := sheets.Hint(err); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		logger.Fatal("spreadsheet bootstrap failed", fields...)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	ticketRepo := repository.NewSheetTicketRepository(tables.Tickets)
	agentRepo := repository.NewSheetAgentRepository(tables.Agents)
	trailRepo := repository.NewClaimEventRepository(pg.PoolHandle())

	snapshot := cache.NewSnapshot(ticketRepo.ListAll, cfg.Cache.TTL(), logger)

	tokens := auth.NewTokenManager(cfg.Session.TokenSecret, cfg.Session.TTL())
	sessionStore := session.NewRedisStore(redis.Client)

	claimService := service.NewClaimService(service.ClaimDependencies{
		TicketRepo: ticketRepo,
		Snapshot:   snapshot,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	sessionService := service.NewSessionService(service.SessionDependencies{
		AgentRepo: agentRepo,
		Sessions:  sessionStore,
		Tokens:    tokens,
		TTL:       cfg.Session.TTL(),
		Logger:    logger,
	})
	auditService := service.NewAuditService(dispatcher, trailRepo, logger)
	worker.StartAuditWorker(auditService)

	sessionMiddleware := auth.NewSessionMiddleware(tokens, sessionStore)
	links := qualitor.NewLinkBuilder(cfg.Qualitor)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, tables, redis, pg),
		Session:           handlers.NewSessionHandler(sessionService),
		Board:             handlers.NewBoardHandler(claimService, sessionService, links, cfg.App.FinishPolicy),
		SessionMiddleware: sessionMiddleware,
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
