package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridnfs/gridnfs/internal/logger"
	"github.com/gridnfs/gridnfs/pkg/config"
	"github.com/gridnfs/gridnfs/pkg/metrics"
	"github.com/gridnfs/gridnfs/pkg/vfs"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default: search standard locations)")
	initConfig := flag.Bool("init", false, "Write a starter configuration file and exit")
	flag.Parse()

	if *initConfig {
		written, err := config.InitConfig(false)
		if err != nil {
			log.Fatalf("Failed to initialize configuration: %v", err)
		}
		fmt.Printf("Wrote starter configuration to %s\n", written)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger
	logger.SetLevel(cfg.Logging.Level)

	fmt.Println("GridNFS - Grid Storage Filesystem Adapter")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Grid root: %s", cfg.Grid.Root)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	identities, closeIdentities, err := config.CreateIdentityDirectory(&cfg.Identity)
	if err != nil {
		log.Fatalf("Failed to create identity directory: %v", err)
	}
	defer func() {
		if err := closeIdentities(); err != nil {
			logger.Warn("Failed to close identity directory: %v", err)
		}
	}()

	client, err := config.CreateGridClient(ctx, &cfg.Grid)
	if err != nil {
		log.Fatalf("Failed to create grid client: %v", err)
	}

	var opts []vfs.Option
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		recorder := metrics.NewPrometheus("gridnfs")
		opts = append(opts, vfs.WithRecorder(recorder))

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, recorder.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}

		go func() {
			logger.Info("Metrics endpoint listening on %s%s", cfg.Metrics.Listen, cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics endpoint failed: %v", err)
			}
		}()
	}

	// Building the filesystem validates the configured root against the
	// grid (it must exist, be a directory and be readable).
	fs, err := vfs.New(ctx, client, identities, cfg.Grid.Root, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize filesystem: %v", err)
	}

	logger.Info("Filesystem ready: root handle %s", fs.Root())

	if stat, err := fs.Statfs(ctx); err == nil {
		logger.Info("Grid capacity: %d bytes total, %d bytes free", stat.TotalBytes, stat.FreeBytes)
	} else {
		logger.Warn("Failed to query grid capacity: %v", err)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("Received signal %v, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics endpoint shutdown failed: %v", err)
		}
	}

	logger.Info("Shutdown complete")
}
