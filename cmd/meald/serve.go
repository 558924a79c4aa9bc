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

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"meal-export-backend/config"
	"meal-export-backend/internal/api"
	"meal-export-backend/internal/applog"
	"meal-export-backend/internal/audit"
	"meal-export-backend/internal/db"
	"meal-export-backend/internal/neis"
	"meal-export-backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath := getConfigPath()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	logCloser, err := applog.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	log.Infof("configuration loaded from %s", configPath)

	if cfg.Upstream.Key == "" {
		log.Warn("no NEIS API key configured, the upstream only serves sample data without one")
	}
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	appStore, err := openStore(cfg)
	if err != nil {
		return err
	}

	var recorder audit.Recorder = audit.Discard{}
	var pool *audit.WorkerPool
	if appStore.Enabled() {
		pool = audit.NewWorkerPool(cfg.Audit.WorkerPoolSize, appStore)
		pool.Start(ctx)
		recorder = pool
		log.WithField("workers", cfg.Audit.WorkerPoolSize).Info("fetch audit log enabled")
	}

	handler := api.NewHandler(neis.NewClient(cfg.Upstream), appStore, recorder)
	router := api.NewRouter(cfg.Server, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info("shutdown signal received, stopping services...")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server ListenAndServe: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}

	log.Info("server gracefully stopped")
	return nil
}

// openStore returns the audit store, or a no-op store when auditing is off.
func openStore(cfg *config.Config) (store.Store, error) {
	if !cfg.Audit.Enabled || cfg.Database.DSN == "" {
		return store.NewNopStore(), nil
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("database initialized successfully")
	return store.NewGormStore(gormDB), nil
}
