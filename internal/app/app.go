package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/config"
	"github.com/MrSnakeDoc/favorg/internal/httpserver"
	"github.com/MrSnakeDoc/favorg/internal/httpserver/deps"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/scheduler"
	"github.com/MrSnakeDoc/favorg/internal/service"
	"github.com/MrSnakeDoc/favorg/internal/utils"
	"github.com/MrSnakeDoc/favorg/internal/version"
)

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	store     service.Store
	service   *service.Service
	validator *scheduler.ValidationScheduler
	seeder    *scheduler.Seeder
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open the store early - fail fast if unavailable
	store, err := OpenStore(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s store: %v", cfg.Store, err)
		os.Exit(1)
	}

	svc := service.New(store, NewValidator(cfg, loggerClient), loggerClient)

	// Create manual validation trigger channel
	validateTrigger := make(chan struct{}, 1)

	validationScheduler := scheduler.NewValidationScheduler(
		svc,
		loggerClient,
		cfg.ValidateInterval,
		validateTrigger,
	)

	// Initialize seeder (if a homepage file is configured)
	var seeder *scheduler.Seeder
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured",
			logger.String("file", cfg.SeedFile))
		seeder = scheduler.NewSeeder(cfg.SeedFile, svc, loggerClient)
	}

	// Dependencies passed to routes.
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		CORSOrigins:     cfg.CORSOrigins,
		Service:         svc,
		StoreKind:       cfg.Store,
		Scheduler:       validationScheduler,
		ValidateTrigger: validateTrigger,
		MaxImportBytes:  cfg.MaxImportBytes,
		RequestTimeout:  cfg.RequestTimeout,
		BulkTimeout:     cfg.BulkTimeout,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:       cfg,
		logger:    loggerClient,
		server:    server,
		store:     store,
		service:   svc,
		validator: validationScheduler,
		seeder:    seeder,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting FavOrg v%s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.Store)
	a.logger.Infof("FavOrg %s", version.String())

	defer utils.MustClose(a.store, a.logger, "store")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed once; a broken seed file must not keep the API down.
	if a.seeder != nil {
		if summary, err := a.seeder.Seed(ctx); err != nil {
			a.logger.Warn("seed import failed", logger.Error(err))
		} else {
			a.logger.Info("seed import done",
				logger.Int("imported", summary.ImportedCount),
				logger.Int("skipped", summary.SkippedCount))
		}
	}

	a.validator.Start(ctx)
	a.logger.Info("validation scheduler started",
		logger.Duration("interval", a.cfg.ValidateInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.validator.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Stop scheduler after the server so no trigger arrives mid-shutdown
	a.validator.Stop()

	a.logger.Info("✅ FavOrg stopped cleanly")
	return nil
}
