package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partdev/pcpart-scraper/internal/api"
	"github.com/partdev/pcpart-scraper/internal/browser"
	"github.com/partdev/pcpart-scraper/internal/catalog"
	"github.com/partdev/pcpart-scraper/internal/config"
	"github.com/partdev/pcpart-scraper/internal/database"
	"github.com/partdev/pcpart-scraper/internal/events"
	"github.com/partdev/pcpart-scraper/internal/jobs"
	"github.com/partdev/pcpart-scraper/internal/metrics"
	"github.com/partdev/pcpart-scraper/internal/progress"
	"github.com/partdev/pcpart-scraper/internal/sink"
)

func main() {
	itemLimit := flag.Int("n", 0, "max records per category, 0 = unbounded")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	categories, err := selectCategories(flag.Args())
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(1)
	}

	table, err := catalog.LoadMappingTable(cfg.Scraper.MappingFile)
	if err != nil {
		logger.Error("failed to load mapping table", "file", cfg.Scraper.MappingFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var apiServer *api.Server
	if cfg.Metrics.Addr != "" {
		apiServer = api.NewServer(cfg.Metrics.Addr, m, logger)
		go apiServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			apiServer.Shutdown(shutdownCtx)
		}()
	}

	var stores []sink.Store
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		stores = append(stores, db)
	}

	var publisher jobs.Publisher
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, logger)
	}

	b, err := browser.New(&browser.Options{
		Headless:         cfg.Browser.Headless,
		Timeout:          cfg.Scraper.NavTimeout,
		UserAgent:        cfg.Browser.UserAgent,
		ViewportWidth:    cfg.Browser.ViewportWidth,
		ViewportHeight:   cfg.Browser.ViewportHeight,
		BlockedResources: browser.DefaultOptions().BlockedResources,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	runner := jobs.NewRunner(pageFactory{b}, table, jobs.Options{
		BaseURL:       cfg.Scraper.BaseURL,
		OutputDir:     cfg.Scraper.OutputDir,
		JobTimeout:    cfg.Scraper.JobTimeout,
		PreflightWait: cfg.Scraper.PreflightWait,
		ItemLimit:     *itemLimit,
		PageDelayMin:  cfg.Scraper.PageDelayMin,
		PageDelayMax:  cfg.Scraper.PageDelayMax,
	}, logger, m, progress.NewLogFactory(logger), publisher, stores...)

	logger.Info("starting extraction run",
		"categories", len(categories),
		"concurrency", cfg.Scraper.Concurrency,
		"item_limit", *itemLimit,
	)

	results, err := runner.Run(ctx, categories, cfg.Scraper.Concurrency)
	if err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}

	reportSummary(logger, results)
}

// pageFactory adapts the browser to the runner's worker-page interface.
type pageFactory struct {
	b *browser.Browser
}

func (f pageFactory) NewPage() (jobs.Page, error) {
	return f.b.NewPage()
}

func selectCategories(args []string) ([]catalog.Category, error) {
	if len(args) == 0 {
		return catalog.AllCategories(), nil
	}
	categories := make([]catalog.Category, 0, len(args))
	for _, arg := range args {
		cat, err := catalog.ParseCategory(arg)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// reportSummary prints the per-category outcome. Incomplete and failed
// categories are reported, not fatal: the exit code stays zero once the
// run itself started.
func reportSummary(logger *slog.Logger, results []jobs.Result) {
	var completed, incomplete, failed, records int
	for _, res := range results {
		attrs := []any{
			"category", res.Category.String(),
			"status", string(res.Status),
			"records", res.Records,
			"pages", res.Pages,
			"duration", res.Duration.Round(time.Millisecond).String(),
		}
		if res.Err != nil {
			attrs = append(attrs, "error", res.Err.Error())
		}
		logger.Info("category summary", attrs...)

		records += res.Records
		switch res.Status {
		case jobs.StatusCompleted:
			completed++
		case jobs.StatusIncomplete:
			incomplete++
		case jobs.StatusFailed:
			failed++
		}
	}
	logger.Info("run finished",
		"completed", completed, "incomplete", incomplete, "failed", failed,
		"records", records)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
