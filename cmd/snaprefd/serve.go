package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snapref-io/snapref/internal/logging"
	"github.com/snapref-io/snapref/internal/refcache"
	"github.com/snapref-io/snapref/internal/server"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	root := fs.String("root", "", "Override snapshot root directory")
	metricsAddr := fs.String("metrics-addr", "", "Override metrics/health listen address (e.g., :9090)")

	fs.Usage = func() {
		fmt.Println(`Usage: snaprefd serve [options]

Run the snapshot reference cache: periodic refresh loop plus the
observability endpoint (/healthz, /readyz, /metrics).

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *root != "" {
		cfg.Cache.SnapshotRoot = *root
	}
	if *metricsAddr != "" {
		cfg.Observability.MetricsAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logging.Configure(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	logger := logging.Component("snaprefd")

	ctx := context.Background()
	cache, closer, err := buildCache(ctx, cfg, true)
	if err != nil {
		logger.WithError(err).Error("failed to build cache")
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	obs := server.NewObservability(cfg.Observability.MetricsAddr, logging.Component("server"))
	obs.RegisterReadinessCheck(&cacheReadiness{cache: cache})
	if err := obs.Start(); err != nil {
		logger.WithError(err).Error("failed to start observability server")
		os.Exit(1)
	}

	cache.Start()
	logger.WithFields(map[string]interface{}{
		"root":   cfg.Cache.SnapshotRoot,
		"period": time.Duration(cfg.Cache.RefreshPeriodMs) * time.Millisecond,
	}).Info("reference cache running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	obs.SetShuttingDown()
	cache.Stop()
	obs.Close()
}

// cacheReadiness reports the cache ready once a generation has been
// installed and it is within the staleness bound.
type cacheReadiness struct {
	cache *refcache.Cache
}

func (r *cacheReadiness) Name() string { return "refcache" }

func (r *cacheReadiness) CheckReady(ctx context.Context) error {
	last := r.cache.LastRefresh()
	if last.IsZero() {
		return fmt.Errorf("no cache generation installed yet")
	}
	if r.cache.IsStale() {
		return fmt.Errorf("cache generation is stale (last refresh %s)", last.Format(time.RFC3339))
	}
	return nil
}
