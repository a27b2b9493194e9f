package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/itsd-platform/helpdesk-service/internal/api/http"
	"github.com/itsd-platform/helpdesk-service/internal/api/http/handlers"
	"github.com/itsd-platform/helpdesk-service/internal/auth"
	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/events"
	"github.com/itsd-platform/helpdesk-service/internal/observability"
	"github.com/itsd-platform/helpdesk-service/internal/persistence"
	"github.com/itsd-platform/helpdesk-service/internal/repository"
	"github.com/itsd-platform/helpdesk-service/internal/repository/memstore"
	"github.com/itsd-platform/helpdesk-service/internal/repository/pgstore"
	"github.com/itsd-platform/helpdesk-service/internal/seed"
	"github.com/itsd-platform/helpdesk-service/internal/service"
	"github.com/itsd-platform/helpdesk-service/internal/worker"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	validator := workflow.NewValidator(workflow.DefaultRegistry())

	var (
		ticketRepo repository.TicketRepository
		historyLog repository.HistoryLog
		userRepo   repository.UserRepository
		pg         *persistence.Postgres
	)

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect postgres", zap.Error(err))
			return err
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Error("failed to run migrations", zap.Error(err))
				return err
			}
		}

		pool := pg.PoolHandle()
		ticketRepo = pgstore.NewTicketStore(pool, validator)
		historyLog = pgstore.NewHistoryLog(pool)
		userRepo = pgstore.NewUserStore(pool)

	default:
		memHistory := memstore.NewHistoryLog()
		userStore := memstore.NewUserStore()
		ticketStore := memstore.NewTicketStore(validator, memHistory)

		if cfg.Seed.Enabled {
			if err := seedMemoryStores(ctx, cfg.Seed, cfg.Auth.BcryptCost, ticketStore, memHistory, userStore, logger); err != nil {
				return err
			}
		}
		ticketRepo = ticketStore
		historyLog = memHistory
		userRepo = userStore
	}

	var (
		refreshStore auth.RefreshTokenStore
		redisConn    *persistence.Redis
	)
	if cfg.Redis.Addr != "" {
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
		refreshStore = auth.NewRedisRefreshTokenStore(redisConn.Client)
	} else {
		logger.Info("redis not configured, using in-memory refresh token store")
		refreshStore = auth.NewMemoryRefreshTokenStore()
	}

	dispatcher := events.NewInMemoryDispatcher()
	registerEventLogging(dispatcher, logger)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		HistoryLog: historyLog,
		Dispatcher: dispatcher,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     userRepo,
		RefreshStore: refreshStore,
	})
	userService := service.NewUserService(userRepo)
	dashboardService := service.NewDashboardService(ticketRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	if cfg.SLA.Enabled {
		monitor := worker.NewSLAMonitor(ticketRepo, dispatcher, logger, cfg.SLA.ScanInterval())
		go monitor.Run(ctx)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("server started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("backend", cfg.Store.Backend))

	waitForShutdown(logger)
	cancel()

	return app.Shutdown()
}

func seedMemoryStores(ctx context.Context, cfg config.SeedConfig, bcryptCost int, tickets *memstore.TicketStore, history *memstore.HistoryLog, users *memstore.UserStore, logger *zap.Logger) error {
	data, err := seed.Generate(cfg, bcryptCost)
	if err != nil {
		return err
	}
	for i := range data.Users {
		if err := users.Create(ctx, &data.Users[i]); err != nil {
			return err
		}
	}
	tickets.Load(data.Tickets)
	for i := range data.Tickets {
		entry := seed.HistoryForTicket(&data.Tickets[i])
		if err := history.Append(ctx, &entry); err != nil {
			return err
		}
	}
	logger.Info("seeded demo data",
		zap.Int("users", len(data.Users)),
		zap.Int("tickets", len(data.Tickets)))
	return nil
}

func registerEventLogging(dispatcher events.Dispatcher, logger *zap.Logger) {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketStatusChanged,
		events.EventTicketSLABreached,
	} {
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.Info("ticket event",
				zap.String("type", string(event.Type)),
				zap.String("ticketId", event.TicketID),
				zap.String("actorId", event.ActorID))
			return nil
		})
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
