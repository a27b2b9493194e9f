package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsd-platform/helpdesk-service/internal/config"
	"github.com/itsd-platform/helpdesk-service/internal/observability"
	"github.com/itsd-platform/helpdesk-service/internal/persistence"
	"github.com/itsd-platform/helpdesk-service/internal/repository/pgstore"
	"github.com/itsd-platform/helpdesk-service/internal/seed"
	"github.com/itsd-platform/helpdesk-service/internal/workflow"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load deterministic demo data into Postgres",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("POSTGRES_DSN required")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	data, err := seed.Generate(cfg.Seed, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	pool := pg.PoolHandle()
	userStore := pgstore.NewUserStore(pool)
	for i := range data.Users {
		if err := userStore.Create(ctx, &data.Users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", data.Users[i].Email, err)
		}
	}

	ticketStore := pgstore.NewTicketStore(pool, workflow.NewValidator(workflow.DefaultRegistry()))
	if err := ticketStore.Load(ctx, data.Tickets); err != nil {
		return fmt.Errorf("seed tickets: %w", err)
	}

	historyLog := pgstore.NewHistoryLog(pool)
	for i := range data.Tickets {
		entry := seed.HistoryForTicket(&data.Tickets[i])
		if err := historyLog.Append(ctx, &entry); err != nil {
			return fmt.Errorf("seed history %s: %w", data.Tickets[i].ID, err)
		}
	}

	logger.Info("seeded demo data",
		zap.Int("users", len(data.Users)),
		zap.Int("tickets", len(data.Tickets)))
	return nil
}
