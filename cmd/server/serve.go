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

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"road_treatment/internal/bridges"
	"road_treatment/internal/config"
	"road_treatment/internal/controllers"
	"road_treatment/internal/logger"
	"road_treatment/internal/middleware"
	"road_treatment/internal/realtime"
	"road_treatment/internal/routes"
	"road_treatment/internal/weather"
	"road_treatment/internal/worker"
)

var autoMigrate bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run migrations and seed stock before serving")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out := logger.Setup(settings.Log.File, settings.Log.Level)

	db, err := config.InitDB(settings.Database)
	if err != nil {
		logrus.WithError(err).Error("Database connection failed")
		return err
	}
	if autoMigrate {
		if err := migrateAndSeed(cmd.Context(), db); err != nil {
			return err
		}
	}

	middleware.Configure(settings.JWT.Secret, settings.JWT.TTL)

	writers, err := worker.NewPool("realtime-writers", settings.Realtime.MaxClients)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	hub := realtime.NewHub(writers, settings.Realtime.MaxClients, settings.Realtime.QueueSize)
	controllers.UseEventHub(hub)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.Redis.Addr,
			Password: settings.Redis.Password,
			DB:       settings.Redis.DB,
		})
		defer rdb.Close()

		relay := realtime.NewRedisRelay(rdb, hub)
		hub.SetForwarder(relay)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("Event relay stopped")
			}
		}()
		logrus.WithFields(logrus.Fields{
			"redis":       settings.Redis.Addr,
			"instance_id": relay.InstanceID(),
		}).Info("Cross-instance event relay enabled")
	}

	controllers.UseBridgeCatalog(bridges.NewCatalog(settings.Bridges.DataPath))
	controllers.UseWeatherClient(weather.NewClient(settings.Weather.AlertsURL, settings.Weather.UserAgent, settings.Weather.Timeout))

	router := routes.SetupRouter(out)
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", settings.Server.Port),
		Handler:           middleware.EnableCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Graceful shutdown incomplete")
	}
	hub.Close()
	writers.Release(5 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
