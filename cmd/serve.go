package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/auth"
	config "task-tracker.com/task-tracker/internal/configs"
	httpapi "task-tracker.com/task-tracker/internal/http"
	middleware "task-tracker.com/task-tracker/internal/http/middlewares"
	"task-tracker.com/task-tracker/internal/services"
	"task-tracker.com/task-tracker/internal/sessions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Starts the task tracker web UI and the in-process recurrence sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		cfg, logger := a.cfg, a.logger

		var store sessions.Store
		switch cfg.SessionBackend {
		case config.SessionBackendRedis:
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			store = sessions.NewRedisStore(redisClient, logger)
		default:
			store = sessions.NewMemoryStore()
		}

		sessionManager, err := sessions.NewManager(store, cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookie)
		if err != nil {
			return err
		}

		clock := services.SystemClock(cfg.Location)
		taskService := services.NewTaskService(a.repo, clock, logger)
		sweepService := services.NewSweepService(a.repo, clock, logger)

		scheduler := services.NewSchedulerService(cfg.Location, logger)
		if cfg.SweepSchedule != config.SweepDisabled {
			if _, err := scheduler.Schedule(cfg.SweepSchedule, sweepService.RunJob); err != nil {
				return err
			}
			scheduler.Start()
			logger.Info("sweep scheduled", "schedule", cfg.SweepSchedule)
		}

		renderer, err := httpapi.NewRenderer()
		if err != nil {
			return err
		}

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Renderer = renderer
		e.Use(echomw.Recover())
		e.Use(middleware.RequestLogger(logger))

		handler := httpapi.NewHandler(taskService, sweepService, auth.NewGate(cfg.Users), sessionManager, cfg.Location, logger)
		httpapi.Register(e, handler, cfg.RateLimit)

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", "error", err)
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		scheduler.Stop()
		sweepService.Shutdown(shutdownCtx)

		logger.Info("HTTP server and sweep scheduler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
