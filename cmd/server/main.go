package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/api"
	"github.com/lalith-99/kosboard/internal/auth"
	"github.com/lalith-99/kosboard/internal/config"
	"github.com/lalith-99/kosboard/internal/db"
	"github.com/lalith-99/kosboard/internal/duedate"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/observ"
	"github.com/lalith-99/kosboard/internal/repository/memory"
	"github.com/lalith-99/kosboard/internal/repository/postgres"
	"github.com/lalith-99/kosboard/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Open the store
	//
	// STORE=memory keeps everything in process and is lost on exit.
	// ---------------------------------------------------------------
	var (
		repos service.Repos
		ping  api.Pinger
	)
	switch cfg.Store {
	case "postgres":
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		pool := database.Pool()
		repos = service.Repos{
			Rooms:     postgres.NewRoomStore(pool),
			Users:     postgres.NewUserStore(pool),
			Tenancies: postgres.NewTenancyStore(pool),
			Payments:  postgres.NewPaymentStore(pool),
		}
		ping = database.Health
	default:
		store := memory.New()
		repos = service.Repos{
			Rooms:     store.Rooms(),
			Users:     store.Users(),
			Tenancies: store.Tenancies(),
			Payments:  store.Payments(),
		}
		logger.Warn("using in-memory store; data is lost on restart")
	}

	// ---------------------------------------------------------------
	// 4. Token revocation
	// ---------------------------------------------------------------
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		revoker = auth.NewRedisRevoker(rdb)
		logger.Info("token revocation backed by redis", zap.String("addr", opts.Addr))
	}

	// ---------------------------------------------------------------
	// 5. Service, metrics and live events
	// ---------------------------------------------------------------
	metrics := observ.NewMetrics()
	hub := events.NewHub(logger)
	defer hub.Close()

	policy, err := duedate.ParsePolicy(cfg.DuePolicy)
	if err != nil {
		return fmt.Errorf("due policy: %w", err)
	}
	svc := service.New(repos, logger,
		service.WithLocation(cfg.Location),
		service.WithDuePolicy(policy, cfg.ReminderWindowDays),
		service.WithMetrics(metrics),
		service.WithEvents(hub),
		service.WithDefaultPassword(cfg.DefaultTenantPassword),
	)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := ensureAdmin(ctx, svc, cfg, logger); err != nil {
			return err
		}
	}

	// ---------------------------------------------------------------
	// 6. HTTP server
	// ---------------------------------------------------------------
	router := api.NewRouter(api.RouterDeps{
		Service:   svc,
		Users:     repos.Users,
		Revoker:   revoker,
		Hub:       hub,
		Metrics:   metrics,
		Ping:      ping,
		Store:     cfg.Store,
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting kosboard",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("store", cfg.Store),
		zap.String("due_policy", string(policy)),
		zap.String("timezone", cfg.Location.String()),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Websocket connections are hijacked, so Shutdown does not wait for
	// them; the deferred hub.Close ends them.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ensureAdmin creates the configured admin account unless the email is
// already registered.
func ensureAdmin(ctx context.Context, svc *service.Service, cfg *config.Config, logger *zap.Logger) error {
	user, err := svc.CreateAdmin(ctx, service.Operator, service.AdminInput{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if service.KindOf(err) == service.KindConflict {
		logger.Info("admin account already present", zap.String("email", cfg.AdminEmail))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin account created", zap.String("email", user.Email))
	return nil
}
