package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/TharukaVishwajith/playwright-crawler/internal/config"
)

const (
	TypeListingPhaseCompleted = "crawler.listings.completed"
	TypeProductScraped        = "crawler.product.scraped"
	TypeDetailPhaseCompleted  = "crawler.details.completed"
)

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// Publisher writes crawl progress events to a Redis stream. Progress is
// observable by other services without their polling the JSON files.
type Publisher struct {
	client RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(cfg config.RedisConfig, logger *slog.Logger) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Publisher{
		client: client,
		stream: cfg.Stream,
		logger: logger.With("component", "events"),
	}
}

// NewPublisherWithClient wires a publisher to an existing client.
func NewPublisherWithClient(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish adds an event to the stream. Payload must be JSON-marshalable.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	id := uuid.New()
	now := time.Now()

	dataJSON, err := json.Marshal(map[string]interface{}{
		"id":        id.String(),
		"type":      eventType,
		"timestamp": now.Format(time.RFC3339),
		"payload":   payload,
		"metadata": map[string]interface{}{
			"source": "playwright-crawler",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":        string(dataJSON),
			"type":        eventType,
			"timestamp":   fmt.Sprintf("%d", now.UnixNano()),
			"original_id": id.String(),
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Debug("event published", "event_id", id, "event_type", eventType)
	return nil
}

// PublishListingPhaseCompleted records that the search phase finished.
func (p *Publisher) PublishListingPhaseCompleted(ctx context.Context, productCount, pageCount int) error {
	return p.Publish(ctx, TypeListingPhaseCompleted, map[string]interface{}{
		"product_count": productCount,
		"page_count":    pageCount,
	})
}

// PublishProductScraped records one finished product detail scrape.
func (p *Publisher) PublishProductScraped(ctx context.Context, url string, specCount, reviewCount int) error {
	return p.Publish(ctx, TypeProductScraped, map[string]interface{}{
		"url":          url,
		"spec_count":   specCount,
		"review_count": reviewCount,
	})
}

// PublishDetailPhaseCompleted records that the detail phase finished.
func (p *Publisher) PublishDetailPhaseCompleted(ctx context.Context, productCount int) error {
	return p.Publish(ctx, TypeDetailPhaseCompleted, map[string]interface{}{
		"product_count": productCount,
	})
}
