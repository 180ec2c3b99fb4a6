// Package queue provides a Redis list receiver for entity mutation events.
// Collaborators that cannot reach the event bus push JSON mutations onto a
// list; the receiver pops them and hands each to a callback.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/events"
)

// Callback receives each valid mutation popped from the queue.
type Callback func(ctx context.Context, mutation *events.EntityMutation) error

// Config carries the Redis connection and queue settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Queue    string
}

type Receiver struct {
	config   Config
	client   redis.UniversalClient
	callback Callback
	logger   *slog.Logger
	schema   gojsonschema.JSONLoader
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewReceiver(config Config, logger *slog.Logger) (*Receiver, error) {
	if config.Queue == "" {
		return nil, errors.New("queue name is required")
	}

	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}

	return &Receiver{
		config: config,
		schema: gojsonschema.NewGoLoader(events.Schema()),
		stopCh: make(chan struct{}),
		logger: logger.With("module", "queue_receiver", "queue", config.Queue),
	}, nil
}

func (r *Receiver) Start(ctx context.Context, callback Callback) error {
	r.logger.InfoContext(ctx, "Starting queue receiver")
	r.callback = callback

	r.client = redis.NewClient(&redis.Options{
		Addr:     r.config.Addr,
		Password: r.config.Password,
		DB:       r.config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.client.Ping(pingCtx).Err()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.InfoContext(ctx, "Connected to Redis", "addr", r.config.Addr, "db", r.config.DB)

	r.wg.Add(1)

	go r.consume(ctx)

	return nil
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopCh:
			r.logger.InfoContext(ctx, "Queue receiver stopped")

			return
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Context cancelled, stopping queue receiver")

			return
		default:
			err := r.processMessage(ctx)
			if err != nil {
				r.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (r *Receiver) processMessage(ctx context.Context) error {
	result, err := r.client.BLPop(ctx, 1*time.Second, r.config.Queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	payload := []byte(result[1])

	validation, err := gojsonschema.Validate(r.schema, gojsonschema.NewBytesLoader(payload))
	if err != nil || !validation.Valid() {
		// Malformed messages are dropped; there is no dead-letter list.
		r.logger.WarnContext(ctx, "Dropping malformed mutation payload")

		return nil
	}

	var mutation events.EntityMutation

	err = json.Unmarshal(payload, &mutation)
	if err != nil {
		r.logger.WarnContext(ctx, "Dropping undecodable mutation payload", "error", err)

		return nil
	}

	if mutation.OccurredAt.IsZero() {
		mutation.OccurredAt = time.Now().UTC()
	}

	err = r.callback(ctx, &mutation)
	if err != nil {
		return fmt.Errorf("mutation callback failed: %w", err)
	}

	return nil
}

func (r *Receiver) Stop(ctx context.Context) error {
	r.logger.InfoContext(ctx, "Stopping queue receiver")

	close(r.stopCh)
	r.wg.Wait()

	if r.client != nil {
		err := r.client.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)
		}
	}

	return nil
}
