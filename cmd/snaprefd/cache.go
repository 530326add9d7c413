package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/snapref-io/snapref/internal/config"
	"github.com/snapref-io/snapref/internal/enumerator"
	"github.com/snapref-io/snapref/internal/logging"
	"github.com/snapref-io/snapref/internal/metrics"
	"github.com/snapref-io/snapref/internal/refcache"
	"github.com/snapref-io/snapref/internal/snapfs"
	snapfss3 "github.com/snapref-io/snapref/internal/snapfs/s3"
)

// loadConfig resolves configuration from a path flag, the environment, or
// defaults, with per-command overrides applied by the caller.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// buildCache wires the filesystem backend, enumerator and metrics into a
// cache per the config. The returned closer releases backend resources.
func buildCache(ctx context.Context, cfg *config.Config, instrument bool) (*refcache.Cache, io.Closer, error) {
	var (
		fs     snapfs.FS
		closer io.Closer
	)
	switch cfg.Store.Backend {
	case "s3":
		s3fs, err := snapfss3.New(ctx, snapfss3.Config{
			Bucket:          cfg.Store.S3.Bucket,
			Region:          cfg.Store.S3.Region,
			Endpoint:        cfg.Store.S3.Endpoint,
			AccessKeyID:     cfg.Store.S3.AccessKey,
			SecretAccessKey: cfg.Store.S3.SecretKey,
			UsePathStyle:    cfg.Store.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create s3 filesystem: %w", err)
		}
		fs = s3fs
		closer = s3fs
	default:
		fs = snapfs.NewOSLocal()
	}

	var opts []refcache.Option
	if instrument {
		fs = snapfs.NewInstrumented(fs, metrics.NewSnapFSMetrics())
		opts = append(opts, refcache.WithMetrics(metrics.NewCacheMetrics()))
	}
	opts = append(opts, refcache.WithLogger(logging.Component("refcache")))

	var enum enumerator.Enumerator
	switch cfg.Cache.Enumerator {
	case "logs":
		enum = enumerator.LogFiles()
	default:
		enum = enumerator.AllFiles()
	}

	cache := refcache.New(fs, enum, refcache.Config{
		Root:           cfg.Cache.SnapshotRoot,
		WorkingDirName: cfg.Cache.WorkingDirName,
		RefreshPeriod:  time.Duration(cfg.Cache.RefreshPeriodMs) * time.Millisecond,
		StalenessBound: time.Duration(cfg.Cache.StalenessBoundMs) * time.Millisecond,
		Name:           cfg.Cache.Name,
	}, opts...)

	return cache, closer, nil
}
