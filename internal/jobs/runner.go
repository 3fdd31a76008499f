package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/partdev/pcpart-scraper/internal/catalog"
	"github.com/partdev/pcpart-scraper/internal/extractor"
	"github.com/partdev/pcpart-scraper/internal/metrics"
	"github.com/partdev/pcpart-scraper/internal/progress"
	"github.com/partdev/pcpart-scraper/internal/ratelimit"
	"github.com/partdev/pcpart-scraper/internal/sink"
)

// ErrPreflight means the site root was unreachable within the bounded
// wait. Fatal to the whole run: no category jobs are attempted.
var ErrPreflight = errors.New("jobs: preflight reachability check failed")

// Status is a job's terminal state.
type Status string

const (
	// StatusCompleted: all pages visited (or the item cap reached).
	StatusCompleted Status = "completed"
	// StatusIncomplete: aborted mid-stream, partial artifact salvaged.
	StatusIncomplete Status = "incomplete"
	// StatusFailed: aborted with nothing accumulated, no artifact.
	StatusFailed Status = "failed"
)

// Result summarizes one category's end-to-end extraction run.
type Result struct {
	ID       string
	Category catalog.Category
	Status   Status
	Records  int
	Pages    int
	Duration time.Duration
	Err      error
}

// Page is one reusable worker navigation context.
type Page interface {
	extractor.Navigator
	Close() error
}

// PageFactory hands each worker its own Page.
type PageFactory interface {
	NewPage() (Page, error)
}

// Publisher is notified of finished jobs. Optional.
type Publisher interface {
	PublishJobFinished(ctx context.Context, res Result) error
}

// Options bound the runner's waits and outputs.
type Options struct {
	BaseURL       string
	OutputDir     string
	JobTimeout    time.Duration
	PreflightWait time.Duration
	// ItemLimit caps records per category across all pages; <= 0 means
	// unbounded.
	ItemLimit int
	// PageDelayMin and PageDelayMax bound the randomized gap between
	// page fetches, shared across all workers. Both zero disables the
	// delay.
	PageDelayMin time.Duration
	PageDelayMax time.Duration
}

// Runner owns the bounded worker pool: a FIFO queue of category jobs
// consumed by long-lived workers, each processing one job to completion
// before dequeuing the next.
type Runner struct {
	pages     PageFactory
	table     *catalog.MappingTable
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
	progress  progress.Factory
	publisher Publisher
	stores    []sink.Store
	limiter   ratelimit.Limiter
}

func NewRunner(pages PageFactory, table *catalog.MappingTable, opts Options, logger *slog.Logger, m *metrics.Metrics, pf progress.Factory, publisher Publisher, stores ...sink.Store) *Runner {
	if pf == nil {
		pf = func(catalog.Category) progress.Reporter { return progress.Nop() }
	}
	var limiter ratelimit.Limiter
	if opts.PageDelayMin > 0 || opts.PageDelayMax > 0 {
		limiter = ratelimit.NewJittered(opts.PageDelayMin, opts.PageDelayMax)
	}
	return &Runner{
		pages:     pages,
		table:     table,
		opts:      opts,
		logger:    logger.With("component", "job_runner"),
		metrics:   m,
		progress:  pf,
		publisher: publisher,
		stores:    stores,
		limiter:   limiter,
	}
}

// Run executes every requested category with bounded parallelism. The
// pre-flight check runs first on a single worker page; on failure no
// jobs are queued and ErrPreflight is returned. Individual job failures
// never abort siblings; their outcomes are reported in the results.
func (r *Runner) Run(ctx context.Context, categories []catalog.Category, concurrency int) ([]Result, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(categories) {
		concurrency = len(categories)
	}

	first, err := r.pages.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create worker page: %w", err)
	}
	if err := r.preflight(ctx, first); err != nil {
		first.Close()
		return nil, err
	}

	pool := []Page{first}
	for i := 1; i < concurrency; i++ {
		p, err := r.pages.NewPage()
		if err != nil {
			closePages(pool, r.logger)
			return nil, fmt.Errorf("create worker page: %w", err)
		}
		pool = append(pool, p)
	}

	queue := make(chan catalog.Category, len(categories))
	for _, cat := range categories {
		queue <- cat
	}
	close(queue)

	resultCh := make(chan Result, len(categories))
	var wg sync.WaitGroup
	for _, p := range pool {
		wg.Add(1)
		go func(p Page) {
			defer wg.Done()
			for cat := range queue {
				resultCh <- r.runJob(ctx, p, cat)
			}
		}(p)
	}

	// Drain before releasing worker resources, even when jobs failed.
	wg.Wait()
	close(resultCh)
	closePages(pool, r.logger)

	results := make([]Result, 0, len(categories))
	for res := range resultCh {
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) preflight(ctx context.Context, page Page) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.PreflightWait)
	defer cancel()

	r.logger.Info("running preflight check", "url", r.opts.BaseURL)
	if _, err := page.Open(ctx, r.opts.BaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrPreflight, err)
	}
	return nil
}

// runJob drives one category to a terminal state. The sink's flush
// decision runs on every exit path; a deadline here cancels this job
// only, the worker is recycled for the next one.
func (r *Runner) runJob(parent context.Context, page Page, cat catalog.Category) Result {
	id := uuid.New().String()
	start := time.Now()
	logger := r.logger.With("job", id, "category", cat.String())
	logger.Info("job started")

	ctx, cancel := context.WithTimeout(parent, r.opts.JobTimeout)
	defer cancel()

	snk := sink.New(r.opts.OutputDir, cat, logger, r.stores...)
	reporter := r.progress(cat)
	defer reporter.Stop()

	ex := extractor.New(page, r.table, r.opts.BaseURL, logger, r.metrics, r.limiter)
	stream := ex.Stream(cat, r.opts.ItemLimit)

	var abortErr error
	pages := 0
	for {
		batch, err := stream.Next(ctx)
		if errors.Is(err, extractor.ErrDone) {
			break
		}
		if err != nil {
			abortErr = err
			break
		}
		if pages == 0 {
			reporter.Start(stream.TotalPages())
		}
		snk.Append(batch)
		pages++
		reporter.Increment()
	}

	res := Result{
		ID:       id,
		Category: cat,
		Records:  snk.Len(),
		Pages:    pages,
	}

	// Flush against the parent context: the job deadline may already
	// have fired, and salvage must still run.
	if abortErr == nil {
		res.Status = StatusCompleted
		if err := snk.Complete(parent); err != nil {
			res.Status = StatusFailed
			res.Err = err
		}
	} else {
		res.Err = abortErr
		wrote, err := snk.Abort(parent)
		switch {
		case err != nil:
			res.Status = StatusFailed
			logger.Error("failed to salvage partial output", "error", err)
		case wrote:
			res.Status = StatusIncomplete
		default:
			res.Status = StatusFailed
		}
	}

	res.Duration = time.Since(start)
	r.metrics.IncJob(string(res.Status))
	r.metrics.ObserveJobDuration(res.Duration)

	if r.publisher != nil {
		if err := r.publisher.PublishJobFinished(parent, res); err != nil {
			logger.Error("failed to publish job event", "error", err)
		}
	}

	if res.Err != nil {
		logger.Warn("job finished", "status", res.Status, "records", res.Records,
			"pages", res.Pages, "duration", res.Duration, "error", res.Err)
	} else {
		logger.Info("job finished", "status", res.Status, "records", res.Records,
			"pages", res.Pages, "duration", res.Duration)
	}
	return res
}

func closePages(pool []Page, logger *slog.Logger) {
	for _, p := range pool {
		if err := p.Close(); err != nil {
			logger.Error("failed to close worker page", "error", err)
		}
	}
}
