package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsrake/pkg/config"
	"github.com/umputun/newsrake/pkg/feed"
	"github.com/umputun/newsrake/pkg/repository"
	"github.com/umputun/newsrake/pkg/scheduler"
	"github.com/umputun/newsrake/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file (yaml or json)"`
	DB     string `long:"db" env:"DB" description:"database location, overrides db_location"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides server.listen"`
	Once   bool   `long:"once" env:"ONCE" description:"run ingestion once and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	lgr.Printf("[INFO] starting newsrake version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until ctx is canceled, or until the single run is done in once mode
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.DB != "" {
		cfg.DBLocation = opts.DB
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	feeds, err := cfg.FeedConfigs()
	if err != nil {
		return fmt.Errorf("failed to load feeds: %w", err)
	}
	classifiers, err := cfg.ClassifierSet()
	if err != nil {
		return fmt.Errorf("failed to load classifiers: %w", err)
	}

	repo, err := repository.NewArticleRepository(ctx, repository.Config{Path: cfg.DBLocation})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			lgr.Printf("[WARN] failed to close database: %v", err)
		}
	}()
	lgr.Printf("[INFO] using database %s, %d feeds, classifiers %v", cfg.DBLocation, len(feeds), classifiers.Names())

	processor := scheduler.NewFeedProcessor(scheduler.FeedProcessorConfig{
		Fetcher:     feed.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent),
		Store:       repo,
		Feeds:       feeds,
		Classifiers: classifiers,
		MaxWorkers:  cfg.Schedule.MaxWorkers,
	})

	if opts.Once {
		return runOnce(ctx, processor)
	}

	sched := scheduler.NewScheduler(scheduler.Params{Ingester: processor, Interval: cfg.Interval()})
	sched.Start(ctx)
	defer sched.Stop()

	if cfg.Server.Listen == "" {
		lgr.Printf("[INFO] http server disabled")
		<-ctx.Done()
		return nil
	}

	srv := server.New(cfg, repo, sched, revision, opts.Debug)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// runOnce performs a single ingestion pass, only a store failure is an error
func runOnce(ctx context.Context, ingester scheduler.Ingester) error {
	summary, err := ingester.Run(ctx)
	for _, f := range summary.FailedFeeds() {
		lgr.Printf("[WARN] feed %s failed: %v", f.URL, f.Err)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		lgr.Printf("[INFO] ingestion run interrupted")
		return nil
	default:
		return fmt.Errorf("ingestion run failed: %w", err)
	}
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
