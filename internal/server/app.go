// Package server wires the application together: storage, pipeline,
// publish orchestration, the scheduler and the HTTP API, with graceful
// shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/media"
	"github.com/postline/postline/internal/notify"
	"github.com/postline/postline/internal/pipeline"
	"github.com/postline/postline/internal/platform"
	"github.com/postline/postline/internal/publish"
	"github.com/postline/postline/internal/scheduler"
	"github.com/postline/postline/internal/server/config"
	"github.com/postline/postline/internal/server/httpapi"
	"github.com/postline/postline/internal/server/repositories/accounts"
	"github.com/postline/postline/internal/server/repositories/repomanager"
	"github.com/postline/postline/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	notifier  notify.Notifier
	scheduler *scheduler.Scheduler
	handler   http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := repomanager.NewFromDSN(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repos.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	guard := content.NewGuard(repos.Posts(), logger, cfg.DedupWindow, cfg.DedupNearThreshold)

	var notifier notify.Notifier
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		n, err := notify.NewDiscordNotifier(cfg.DiscordToken, cfg.DiscordChannelID, logger)
		if err != nil {
			return nil, fmt.Errorf("discord init error: %w", err)
		}
		notifier = n
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	machine := pipeline.NewMachine(repos.Posts(), notifier, logger)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	adapters := platform.NewAdapters(httpClient)
	credSource := accounts.NewSource(repos.Accounts())

	var enhancer media.Enhancer
	if cfg.EnhancerEndpoint != "" {
		enhancer = media.NewHTTPEnhancer(cfg.EnhancerEndpoint, httpClient, logger)
	}

	orchestrator := publish.NewOrchestrator(adapters, credSource, repos.Posts(), machine, guard,
		enhancer, publish.RetryConfig{
			MaxRetries: cfg.RetryMaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			Jitter:     cfg.RetryJitter,
		}, logger)

	sched := scheduler.New(repos.Posts(), orchestrator, cfg.OrgID, cfg.SchedulerInterval, logger)

	var mediaStore httpapi.MediaStore
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		mediaStore = media.NewStore(media.StoreConfig{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
		})
	}

	postService := services.NewPostService(repos.Posts(), guard)
	api := httpapi.NewServer(postService, machine, orchestrator, repos.Accounts(),
		mediaStore, logger, []byte(cfg.SecretKey), cfg.OrgID)

	return &App{
		config:    cfg,
		logger:    logger,
		repos:     repos,
		notifier:  notifier,
		scheduler: sched,
		handler:   api.Handler(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr, "org", app.config.OrgID)

	app.initSignalHandler(cancelFunc)

	if err := app.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("scheduler start error: %w", err)
	}

	srv := &http.Server{Addr: app.config.Addr, Handler: app.handler}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancelFunc()
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}

	app.scheduler.Stop()

	if c, ok := app.notifier.(*notify.DiscordNotifier); ok {
		if err := c.Close(); err != nil {
			app.logger.Error(shutdownCtx, "discord close error", "error", err)
		}
	}

	if err := app.repos.Close(); err != nil {
		app.logger.Error(shutdownCtx, "storage close error", "error", err)
	}

	return runErr
}
