package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/partdev/pcpart-scraper/internal/jobs"
)

// EventTypeCategoryExtracted is published when a category job reaches a
// terminal state.
const EventTypeCategoryExtracted = "CATEGORY_EXTRACTED"

// CategoryExtractedPayload is the wire form of a finished job.
type CategoryExtractedPayload struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Timestamp  time.Time `json:"timestamp"`
	JobID      string    `json:"job_id"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	Records    int       `json:"records"`
	Pages      int       `json:"pages"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Source     string    `json:"source"`
}

// RedisClient is the slice of go-redis the publisher needs.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher emits job lifecycle events onto a Redis stream so downstream
// consumers (indexers, alerting) can react to finished extractions.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

// PublishJobFinished appends one CATEGORY_EXTRACTED entry to the stream.
func (p *Publisher) PublishJobFinished(ctx context.Context, res jobs.Result) error {
	payload := CategoryExtractedPayload{
		EventID:    uuid.New().String(),
		EventType:  EventTypeCategoryExtracted,
		Timestamp:  time.Now(),
		JobID:      res.ID,
		Category:   res.Category.String(),
		Status:     string(res.Status),
		Records:    res.Records,
		Pages:      res.Pages,
		DurationMS: res.Duration.Milliseconds(),
		Source:     "scraper",
	}
	if res.Err != nil {
		payload.Error = res.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": payload.EventType,
			"payload":    string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}

	p.logger.Debug("published event",
		"stream", p.stream, "job", res.ID, "status", string(res.Status))
	return nil
}
