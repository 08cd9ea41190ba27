package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"tempkeeper/internal/config"
	"tempkeeper/internal/exitcodes"
	"tempkeeper/internal/journal"
	"tempkeeper/internal/logging"
	"tempkeeper/internal/metrics"
	"tempkeeper/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "/etc/tempkeeper/config.yaml", "Path to configuration file")
	dryRun := flag.Bool("dry-run", false, "Perform dry run without removing anything")
	once := flag.Bool("once", false, "Run one sweep cycle and exit (no loop)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := logging.New()
		log.Printf("ERROR: Failed to load config: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	logger := logging.NewWithConfig(cfg)
	logger.Println("tempkeeper sweeper starting")
	logger.Printf("Config file: %s", *configPath)
	if *dryRun {
		logger.Println("DRY RUN MODE: No objects will be removed")
	}

	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	var jnl *journal.DB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening sweep journal: %s", cfg.DatabasePath)
		jnl, err = journal.Open(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open journal: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := jnl.Close(); err != nil {
				logger.Printf("ERROR: Failed to close journal: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down gracefully", sig)
		cancel()
	}()

	logger.Println("Starting sweep scheduler")
	if *once {
		if err := scheduler.RunOnce(ctx, cfg, *dryRun, logger, jnl); err != nil {
			logger.Printf("ERROR: Sweep failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		logger.Println("Sweep completed successfully")
	} else {
		if err := scheduler.Run(ctx, cfg, *dryRun, logger, jnl); err != nil && err != context.Canceled {
			logger.Printf("ERROR: Scheduler failed: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
	}

	logger.Println("tempkeeper sweeper stopped")
}
