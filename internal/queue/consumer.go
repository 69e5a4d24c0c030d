package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"adpnorm/internal/config"
	"adpnorm/internal/domain"
)

// JobProcessor runs one job and reports its failure.
type JobProcessor interface {
	Process(ctx context.Context, jobID uuid.UUID, maxAttempts int) error
}

// Consumer serves normalization tasks from Redis.
type Consumer struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor JobProcessor
	cfg       config.QueueConfig
	timeout   time.Duration
}

// NewConsumer creates a consumer for cfg.QueueName.
func NewConsumer(cfg config.QueueConfig, processor JobProcessor, timeout time.Duration) (*Consumer, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue.NewConsumer: parsing redis url: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: max(cfg.Concurrency, 1),
		Queues:      map[string]int{cfg.QueueName: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return retryDelay(n)
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Printf("queue.Consumer: task %s failed: %v", task.Type(), err)
		}),
	})

	c := &Consumer{
		server:    server,
		mux:       asynq.NewServeMux(),
		processor: processor,
		cfg:       cfg,
		timeout:   timeout,
	}
	c.mux.HandleFunc(TypeNormalizeJob, c.HandleNormalize)
	return c, nil
}

// Start begins serving in the background.
func (c *Consumer) Start() error {
	log.Printf("queue.Consumer: started (queue=%s, concurrency=%d, maxRetries=%d)",
		c.cfg.QueueName, c.cfg.Concurrency, c.cfg.MaxRetries)
	if err := c.server.Start(c.mux); err != nil {
		return fmt.Errorf("queue.Consumer.Start: %w", err)
	}
	return nil
}

// Shutdown waits for active tasks, then stops the server.
func (c *Consumer) Shutdown() {
	c.server.Shutdown()
	log.Printf("queue.Consumer: shutdown complete")
}

// HandleNormalize runs the job named by the task. Failures that a retry
// cannot fix skip asynq's retry.
func (c *Consumer) HandleNormalize(ctx context.Context, task *asynq.Task) error {
	jobID, err := parseNormalizeTask(task)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	jobCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.processor.Process(jobCtx, jobID, c.cfg.MaxRetries); err != nil {
		if !domain.IsRetryable(err) {
			return fmt.Errorf("job %s: %w: %w", jobID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("job %s: %w", jobID, err)
	}
	return nil
}

// retryDelay backs off 5s, 10s, 20s and so on, capped at a minute.
func retryDelay(n int) time.Duration {
	if n > 4 {
		return time.Minute
	}
	return min(time.Duration(5*(1<<n))*time.Second, time.Minute)
}

// IsSkipRetry reports whether err tells asynq not to retry.
func IsSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}
