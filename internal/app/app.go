package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/checkin/internal/config"
	"github.com/MrSnakeDoc/checkin/internal/httpserver"
	"github.com/MrSnakeDoc/checkin/internal/httpserver/deps"
	"github.com/MrSnakeDoc/checkin/internal/logger"
	"github.com/MrSnakeDoc/checkin/internal/scheduler"
	"github.com/MrSnakeDoc/checkin/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	rt     *Runtime
	server *httpserver.Server
	daily  *scheduler.Daily
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	rt, err := NewRuntime(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize: %v", err)
		os.Exit(1)
	}

	var daily *scheduler.Daily
	if cfg.ScheduleEnabled {
		daily, err = scheduler.NewDaily(cfg.ScheduleTime, func(ctx context.Context) error {
			_, err := rt.Engine.CheckinAll(ctx, rt.Credentials)
			return err
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Invalid schedule time: %v", err)
			os.Exit(1)
		}
	} else {
		loggerClient.Info("daily schedule disabled, check-ins run on demand only")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:      loggerClient,
		Engine:      rt.Engine,
		Backend:     rt.Backend,
		Credentials: rt.Credentials,
		StartTime:   time.Now(),
		Version:     version.Version,
		Commit:      version.Commit,
		BuildDate:   version.BuildDate,
		GoVersion:   version.GoVersion,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		rt:     rt,
		server: server,
		daily:  daily,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting checkin v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("checkin %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.daily != nil {
		if err := a.daily.Start(ctx); err != nil {
			return fmt.Errorf("failed to start daily scheduler: %w", err)
		}
		a.logger.Info("daily scheduler started",
			logger.String("at", a.cfg.ScheduleTime))
	}

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
		return err
	}

	if a.daily != nil {
		a.daily.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.rt.Close()

	a.logger.Info("✅ checkin stopped cleanly")
	return nil
}
