package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	_ "time/tzdata"

	"github.com/lalith-99/kosboard/internal/config"
	"github.com/lalith-99/kosboard/internal/db"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/observ"
	"github.com/lalith-99/kosboard/internal/repository/postgres"
	"github.com/lalith-99/kosboard/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:           "kosctl",
	Short:         "Operator commands for the kosboard database",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level for database and service logs")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every subcommand works against: the Postgres database named
// by DATABASE_URL and a service bound to it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *db.DB
	svc    *service.Service
}

func open(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observ.NewLogger(cfg.Env, flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	policy, err := duedate.ParsePolicy(cfg.DuePolicy)
	if err != nil {
		database.Close()
		return nil, err
	}

	pool := database.Pool()
	svc := service.New(service.Repos{
		Rooms:     postgres.NewRoomStore(pool),
		Users:     postgres.NewUserStore(pool),
		Tenancies: postgres.NewTenancyStore(pool),
		Payments:  postgres.NewPaymentStore(pool),
	}, logger,
		service.WithLocation(cfg.Location),
		service.WithDuePolicy(policy, cfg.ReminderWindowDays),
		service.WithDefaultPassword(cfg.DefaultTenantPassword),
	)
	return &env{cfg: cfg, logger: logger, db: database, svc: svc}, nil
}

func (e *env) Close() {
	e.db.Close()
	_ = e.logger.Sync()
}
