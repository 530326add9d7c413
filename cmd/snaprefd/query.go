package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/snapref-io/snapref/internal/logging"
	"github.com/snapref-io/snapref/internal/refcache"
)

// oneShotCache loads config, applies overrides and builds an unstarted cache
// for the one-shot subcommands.
func oneShotCache(configPath, root string) (*refcache.Cache, func(), error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if root != "" {
		cfg.Cache.SnapshotRoot = root
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logging.Configure(cfg.Observability.LogLevel, cfg.Observability.LogFormat)

	cache, closer, err := buildCache(context.Background(), cfg, false)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closer != nil {
			closer.Close()
		}
	}
	return cache, cleanup, nil
}

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	root := fs.String("root", "", "Override snapshot root directory")
	fromStdin := fs.Bool("stdin", false, "Read candidate paths from stdin, one per line")

	fs.Usage = func() {
		fmt.Println(`Usage: snaprefd check [options] [path ...]

Classify candidate file paths against the snapshot reference cache and print
the unreferenced ones (safe to delete), one per line.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	paths := fs.Args()
	if *fromStdin {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				paths = append(paths, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			os.Exit(1)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "no candidate paths given")
		os.Exit(1)
	}

	cache, cleanup, err := oneShotCache(*configPath, *root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	unreferenced, err := cache.GetUnreferencedFiles(context.Background(), refcache.Candidates(paths...))
	if err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
	for _, cand := range unreferenced {
		fmt.Println(cand.Path)
	}
}

func runRefresh(args []string) {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	root := fs.String("root", "", "Override snapshot root directory")

	fs.Usage = func() {
		fmt.Println(`Usage: snaprefd refresh [options]

Force one synchronous cache refresh and print the installed generation's
snapshot names.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cache, cleanup, err := oneShotCache(*configPath, *root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	if err := cache.TriggerRefresh(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
		os.Exit(1)
	}

	gen := cache.Current()
	names := gen.SnapshotNames()
	sort.Strings(names)
	fmt.Printf("generation %s: %d snapshots, %d referenced files\n",
		gen.ID(), gen.NumSnapshots(), gen.NumFiles())
	for _, name := range names {
		files, _ := gen.Snapshot(name)
		fmt.Printf("  %s (%d files)\n", name, len(files))
	}
}

func runInProgress(args []string) {
	fs := flag.NewFlagSet("inprogress", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	root := fs.String("root", "", "Override snapshot root directory")

	fs.Usage = func() {
		fmt.Println(`Usage: snaprefd inprogress [options]

Print the base names of all files currently staged under the in-progress
working directory, one per line.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cache, cleanup, err := oneShotCache(*configPath, *root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	names, err := cache.SnapshotsInProgress(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		fmt.Println(name)
	}
}
