// Command server runs the HR portal API.
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

	"github.com/spf13/pflag"

	"github.com/dexhub/hr-portal/internal/api"
	"github.com/dexhub/hr-portal/internal/api/dashboard"
	"github.com/dexhub/hr-portal/internal/api/leaves"
	"github.com/dexhub/hr-portal/internal/api/overtime"
	"github.com/dexhub/hr-portal/internal/api/users"
	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/cache"
	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/mattermost"
	"github.com/dexhub/hr-portal/internal/migrations"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/internal/service/catalog"
	dashboardsvc "github.com/dexhub/hr-portal/internal/service/dashboard"
	"github.com/dexhub/hr-portal/internal/service/requests"
	"github.com/dexhub/hr-portal/internal/service/scheduler"
	userssvc "github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
)

const tokenIssuer = "hr-portal"

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return err
	}
	log := logger.Get()
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting HR portal")

	if cfg.Database.Postgres.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// The dashboard runs uncached when Redis is disabled or unreachable.
	var (
		statsCache  cache.Cache
		cachePinger api.CachePinger
	)
	if cfg.Database.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisCache(ctx, &cfg.Database.Redis)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, dashboard caching disabled")
		} else {
			defer func() { _ = rc.Close() }()
			statsCache = rc
			cachePinger = rc
			log.Info().Str("addr", cfg.Database.Redis.Addr()).Msg("Connected to Redis")
		}
	}

	userRepo := repository.NewUserRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	otRepo := repository.NewOvertimeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.AccessTokenTTL(), tokenIssuer)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	stats := dashboardsvc.NewService(
		userRepo, leaveRepo, otRepo,
		statsCache, time.Duration(cfg.Dashboard.CacheTTL)*time.Second,
		log,
	)

	notifier := mattermost.NewClient(&cfg.Mattermost, log)
	notifier.SetUserLookup(userRepo)

	reqs := requests.NewService(leaveRepo, otRepo, catalogRepo, requests.Policy{
		AllowRedecide: cfg.Workflow.AllowRedecide,
		DefaultLimit:  cfg.Workflow.DefaultLimit,
		MaxLimit:      cfg.Workflow.MaxLimit,
	}, log)
	reqs.SetStatsInvalidator(stats)
	if cfg.Mattermost.Enabled {
		reqs.SetNotifier(notifier)
	}

	userService := userssvc.NewService(userRepo, hasher, log)
	userService.SetStatsInvalidator(stats)
	catalogService := catalog.NewService(catalogRepo, log)
	catalogService.SetStatsInvalidator(stats)

	reminders := scheduler.NewService(cfg, leaveRepo, otRepo, userRepo, notifier, log)
	if err := reminders.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer reminders.Stop()

	router := api.NewRouter(api.Dependencies{
		Config: cfg,
		Handlers: api.Handlers{
			Users:     users.NewHandler(userService, tokens, log),
			Leaves:    leaves.NewHandler(reqs, catalogService, log),
			Overtime:  overtime.NewHandler(reqs, log),
			Dashboard: dashboard.NewHandler(stats, log),
		},
		Auth:  auth.NewMiddleware(tokens, userRepo, log),
		DB:    db,
		Cache: cachePinger,
		Log:   log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		log.Info().Msg("Shutdown complete")
	}
	return nil
}

func migrateUp(cfg *config.Config, log *logger.Logger) error {
	runner, err := migrations.New(cfg.Database.Postgres.MigrationURL(), log)
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()
	return runner.Up()
}
