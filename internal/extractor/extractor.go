package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/partdev/pcpart-scraper/internal/catalog"
	"github.com/partdev/pcpart-scraper/internal/metrics"
	"github.com/partdev/pcpart-scraper/internal/ratelimit"
)

var (
	// ErrDone signals normal exhaustion of a page stream.
	ErrDone = errors.New("extractor: no more pages")

	// ErrNoPagination means the pagination control was absent or
	// unreadable on the category's first page. Fatal to the job.
	ErrNoPagination = errors.New("extractor: pagination control not found")
)

// Navigator is the slice of the browser engine the extractor depends
// on: navigate to a URL, wait for the network to settle, return the
// rendered HTML.
type Navigator interface {
	Open(ctx context.Context, url string) (string, error)
}

// Extractor turns a category's paginated listing into typed records by
// applying the mapping table and serializers to each item row.
type Extractor struct {
	nav     Navigator
	table   *catalog.MappingTable
	baseURL string
	logger  *slog.Logger
	metrics *metrics.Metrics
	limiter ratelimit.Limiter
}

// New builds an Extractor. limiter may be nil, in which case page
// fetches are not rate limited.
func New(nav Navigator, table *catalog.MappingTable, baseURL string, logger *slog.Logger, m *metrics.Metrics, limiter ratelimit.Limiter) *Extractor {
	return &Extractor{
		nav:     nav,
		table:   table,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "extractor"),
		metrics: m,
		limiter: limiter,
	}
}

// Stream starts a lazy, non-restartable sequence of page batches for
// one category. No navigation happens until the first Next call.
// limit <= 0 means unbounded.
func (e *Extractor) Stream(cat catalog.Category, limit int) *Stream {
	return &Stream{e: e, cat: cat, limit: limit}
}

// Stream yields one PageBatch per catalog page, in ascending page
// order. The total page count is read once, from the first page's
// pagination control, and trusted for the rest of the run.
type Stream struct {
	e       *Extractor
	cat     catalog.Category
	limit   int
	page    int
	total   int
	emitted int
	done    bool
}

// TotalPages is valid after the first successful Next call.
func (s *Stream) TotalPages() int {
	return s.total
}

// Next fetches and extracts the next page. It returns ErrDone after the
// last page, or after the item cap terminated the sequence early. Any
// other error aborts the stream permanently.
func (s *Stream) Next(ctx context.Context) (*catalog.PageBatch, error) {
	if s.done {
		return nil, ErrDone
	}

	first := s.page == 0
	if first {
		s.page = 1
	} else {
		s.page++
	}

	if s.e.limiter != nil {
		if err := s.e.limiter.Wait(ctx); err != nil {
			s.done = true
			return nil, fmt.Errorf("category %s page %d: %w", s.cat, s.page, err)
		}
	}

	html, err := s.e.nav.Open(ctx, s.e.pageURL(s.cat, s.page))
	if err != nil {
		s.done = true
		return nil, fmt.Errorf("category %s page %d: %w", s.cat, s.page, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.done = true
		return nil, fmt.Errorf("category %s page %d: parse HTML: %w", s.cat, s.page, err)
	}

	if first {
		total, err := pageCount(doc)
		if err != nil {
			s.done = true
			return nil, fmt.Errorf("category %s: %w", s.cat, err)
		}
		s.total = total
		s.e.logger.Info("discovered page count", "category", s.cat.String(), "pages", total)
	}

	batch := s.e.extractPage(doc, s.cat, s.page, s.remaining())
	s.emitted += len(batch.Records)
	s.e.metrics.IncPage(s.cat.String())
	s.e.metrics.AddRecords(s.cat.String(), len(batch.Records))

	if s.page >= s.total || (s.limit > 0 && s.emitted >= s.limit) {
		s.done = true
	}

	return batch, nil
}

// remaining returns how many more records may be emitted, or -1 when
// unbounded.
func (s *Stream) remaining() int {
	if s.limit <= 0 {
		return -1
	}
	return s.limit - s.emitted
}

func (e *Extractor) pageURL(cat catalog.Category, page int) string {
	if page <= 1 {
		return e.baseURL + cat.ListingPath()
	}
	return fmt.Sprintf("%s%s#page=%d", e.baseURL, cat.ListingPath(), page)
}

// pageCount reads the last entry of the pagination control. A category
// with a single page of results still renders the control with one
// entry.
func pageCount(doc *goquery.Document) (int, error) {
	last := doc.Find("ul.pagination li a").Last()
	if last.Length() == 0 {
		return 0, ErrNoPagination
	}
	n, err := strconv.Atoi(strings.TrimSpace(last.Text()))
	if err != nil || n < 1 {
		return 0, ErrNoPagination
	}
	return n, nil
}

// extractPage enumerates the item rows of one rendered listing page.
// Item failures are isolated: a bad row is dropped and logged, never
// aborting the page. limit < 0 means unbounded.
func (e *Extractor) extractPage(doc *goquery.Document, cat catalog.Category, page, limit int) *catalog.PageBatch {
	batch := &catalog.PageBatch{Page: page}

	doc.Find("tr.tr__product").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if limit >= 0 && len(batch.Records) >= limit {
			return false
		}
		rec, err := e.extractItem(cat, row)
		if err != nil {
			e.metrics.IncItemError(cat.String(), "item_parse")
			e.logger.Warn("dropping item",
				"category", cat.String(), "page", page, "item", i, "error", err)
			return true
		}
		batch.Records = append(batch.Records, rec)
		return true
	})

	return batch
}

// extractItem builds one Record from an item row. A panicking custom
// serializer is contained here so one item can never take down its
// page.
func (e *Extractor) extractItem(cat catalog.Category, row *goquery.Selection) (rec catalog.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("serializer panic: %v", r)
		}
	}()

	name := strings.TrimSpace(row.Find("td.td__name p").First().Text())
	if name == "" {
		return nil, errors.New("item has no name")
	}

	rec = catalog.Record{"name": name}

	// Price is always present on the record; nil when the cell is
	// missing or carries no numeric text.
	rawPrice := row.Find("td.td__price").First().Text()
	if price, ok := catalog.ParseNumber(rawPrice); ok {
		rec["price"] = price
	} else {
		rec["price"] = nil
	}

	row.Find("td.td__spec").Each(func(i int, cell *goquery.Selection) {
		label := strings.TrimSpace(cell.Find("h6.specLabel").First().Text())
		if label == "" {
			return
		}

		mapping, ok := e.table.Resolve(cat, label)
		if !ok {
			e.metrics.IncItemError(cat.String(), "unmapped_label")
			e.logger.Warn("unmapped attribute label",
				"category", cat.String(), "label", label, "item", name)
			return
		}

		raw := cellValue(cell, label)
		if mapping.Kind == catalog.KindCustom {
			rec[mapping.Field] = catalog.CustomSerialize(cat, mapping.Field, raw, e.logger)
		} else {
			rec[mapping.Field] = catalog.SerializeGeneric(raw, mapping.Kind, e.logger)
		}
	})

	return rec, nil
}

// cellValue strips the label heading from a spec cell's text, leaving
// the attribute value.
func cellValue(cell *goquery.Selection, label string) string {
	text := cell.Text()
	if idx := strings.Index(text, label); idx >= 0 {
		text = text[idx+len(label):]
	}
	return strings.TrimSpace(text)
}
