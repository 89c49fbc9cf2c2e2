package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/ebbingassist/backend/internal/config"
	"github.com/ebbingassist/backend/internal/database"
	"github.com/ebbingassist/backend/internal/handler"
	"github.com/ebbingassist/backend/internal/queue"
	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/router"
	"github.com/ebbingassist/backend/internal/scheduler"
	"github.com/ebbingassist/backend/internal/service"
)

func main() {
	root := &cli.Command{
		Name:   "ebbing-assist",
		Usage:  "study plan and knowledge base API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:  "consume",
				Usage: "drain activity events into a log file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "logs/activity.log", Usage: "activity log path"},
				},
				Action: consume,
			},
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		slog.Error("exiting", slog.Any("error", err))
		os.Exit(1)
	}
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := initLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h).With(slog.String("env", cfg.AppEnv))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db, cfg.DBDriver, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	version, err := database.MigrationVersion(ctx, db, cfg.DBDriver)
	if err == nil {
		logger.Info("database ready", slog.String("driver", cfg.DBDriver), slog.Int64("schema_version", version))
	}
	return db, nil
}

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return db.Close()
}

func consume(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cfg.BrokerURL == "" {
		return errors.New("BROKER_URL is not set")
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(cfg.BrokerURL, logger)
	c.LogPath = cmd.String("out")
	logger.Info("activity consumer starting", slog.String("queue", c.Queue), slog.String("out", c.LogPath))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("activity consumer stopped")
	return nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.RedisURL)
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var events queue.Publisher = queue.NoopPublisher{}
	if cfg.BrokerURL != "" {
		events = queue.NewAMQPPublisher(cfg.BrokerURL)
	} else {
		logger.Info("BROKER_URL not set, activity events disabled")
	}

	// Repositories
	users := repository.NewUserRepo(db)
	ledger := repository.NewTokenRepo(db)
	entries := repository.NewEntryRepo(db)
	logs := repository.NewStudyLogRepo(db)

	// Services
	tokens := service.NewTokenService(ledger, cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	accounts := service.NewAccountService(users, tokens, cfg.BcryptCost)
	knowledge := service.NewKnowledgeService(db)
	plans := service.NewPlanService(db, events, logger)
	studyLogs := service.NewStudyLogService(logs, entries, events, logger)

	health := &handler.HealthHandler{
		DB:       handler.CheckerFunc(db.PingContext),
		Optional: map[string]handler.Checker{"redis": redisChecker(rdb)},
	}

	e := router.New(router.Deps{
		Logger:    logger,
		Auth:      tokens,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		Health:    health,
		AuthH:     handler.NewAuthHandler(accounts, tokens),
		Users:     handler.NewUserHandler(accounts),
		Knowledge: handler.NewKnowledgeHandler(knowledge),
		Plans:     handler.NewPlanHandler(plans),
		StudyLogs: handler.NewStudyLogHandler(studyLogs),
	})

	if cfg.SchedulerEnabled {
		sched := scheduler.New(logger)
		if _, err := sched.ScheduleInterval("db_pool_stats", cfg.SchedulerStatsInterval, scheduler.PoolStatsJob(db, logger)); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	srv.SetKeepAlivesEnabled(false)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.Any("error", err))
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}

// redisChecker returns nil for a disabled client so readiness reports it
// as disabled.
func redisChecker(rdb *redis.Client) handler.Checker {
	if rdb == nil {
		return nil
	}
	return handler.CheckerFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}
