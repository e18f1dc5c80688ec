package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/asset-desk/internal/api/http"
	"github.com/spec-kit/asset-desk/internal/api/http/handlers"
	"github.com/spec-kit/asset-desk/internal/auth"
	"github.com/spec-kit/asset-desk/internal/config"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/observability"
	"github.com/spec-kit/asset-desk/internal/persistence"
	"github.com/spec-kit/asset-desk/internal/repository"
	"github.com/spec-kit/asset-desk/internal/service"
	"github.com/spec-kit/asset-desk/internal/worker"
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
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.Pool
	ticketRepo := repository.NewTicketRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	licenseRepo := repository.NewLicenseRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)
	specRepo := repository.NewCachedSpecificationRepository(
		repository.NewSpecificationRepository(pool), redis, cfg.Inventory.SpecCacheTTL(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := worker.StartNotificationWorker(cfg, dispatcher, redis, logger)
	defer notifications.Stop()

	policy, err := service.NewTransitionPolicy(cfg.Tickets.TransitionPolicy)
	if err != nil {
		logger.Fatal("invalid ticket transition policy", zap.Error(err))
	}

	ledgerService := service.NewLedgerService(ledgerRepo)
	specService := service.NewSpecificationService(specRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Policy:     policy,
		Dispatcher: dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Tx:                   pg,
		AssetRepo:            assetRepo,
		LicenseRepo:          licenseRepo,
		Ledger:               ledgerService,
		Specifications:       specService,
		RequireSpecification: cfg.Inventory.RequireSpecification,
		Dispatcher:           dispatcher,
	})
	assetService := service.NewAssetService(service.AssetDependencies{
		Tx:                   pg,
		AssetRepo:            assetRepo,
		Ledger:               ledgerService,
		Specifications:       specService,
		RequireSpecification: cfg.Inventory.RequireSpecification,
		Dispatcher:           dispatcher,
	})
	licenseService := service.NewLicenseService(service.LicenseDependencies{
		Tx:          pg,
		LicenseRepo: licenseRepo,
		Ledger:      ledgerService,
		Dispatcher:  dispatcher,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.TrimSpace(cfg.App.CORSAllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Assets:         handlers.NewAssetsHandler(assetService, assignmentService),
		Licenses:       handlers.NewLicensesHandler(licenseService, assignmentService),
		Specifications: handlers.NewSpecificationsHandler(specService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
