package progress

import (
	"log/slog"

	"github.com/partdev/pcpart-scraper/internal/catalog"
)

// Reporter consumes pagination progress for one category job: the total
// page count once it is known, then one tick per completed page.
type Reporter interface {
	Start(total int)
	Increment()
	Stop()
}

// Factory builds one Reporter per job. Swappable so a terminal progress
// bar can be plugged in without touching the orchestrator.
type Factory func(cat catalog.Category) Reporter

// NewLogFactory reports progress through structured logs.
func NewLogFactory(logger *slog.Logger) Factory {
	return func(cat catalog.Category) Reporter {
		return &logReporter{
			logger: logger.With("component", "progress", "category", cat.String()),
		}
	}
}

type logReporter struct {
	logger *slog.Logger
	total  int
	done   int
}

func (r *logReporter) Start(total int) {
	r.total = total
	r.logger.Info("pages discovered", "total", total)
}

func (r *logReporter) Increment() {
	r.done++
	r.logger.Info("page completed", "done", r.done, "total", r.total)
}

func (r *logReporter) Stop() {
	r.logger.Info("progress stopped", "done", r.done, "total", r.total)
}

// Nop returns a reporter that discards all events.
func Nop() Reporter { return nopReporter{} }

type nopReporter struct{}

func (nopReporter) Start(int)  {}
func (nopReporter) Increment() {}
func (nopReporter) Stop()      {}
