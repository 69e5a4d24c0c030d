package queue

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"adpnorm/internal/config"
	"adpnorm/internal/port"
)

// AsynqEnqueuer pushes jobs onto a Redis queue.
type AsynqEnqueuer struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	queue     string
	maxRetry  int
}

// NewAsynqEnqueuer connects an enqueuer to cfg.RedisURL.
func NewAsynqEnqueuer(cfg config.QueueConfig) (*AsynqEnqueuer, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("queue.NewAsynqEnqueuer: parsing redis url: %w", err)
	}
	return &AsynqEnqueuer{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
		queue:     cfg.QueueName,
		maxRetry:  retriesAfterFirst(cfg.MaxRetries),
	}, nil
}

var _ port.JobEnqueuer = (*AsynqEnqueuer)(nil)

func (e *AsynqEnqueuer) EnqueueJob(ctx context.Context, jobID uuid.UUID) error {
	task, err := NewNormalizeTask(jobID,
		asynq.Queue(e.queue),
		asynq.MaxRetry(e.maxRetry),
		asynq.TaskID(jobID.String()),
	)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		log.Printf("queue.EnqueueJob: job %s already has a task on %s", jobID, e.queue)
		return nil
	}
	if err != nil {
		return fmt.Errorf("queue.EnqueueJob: %s: %w", jobID, err)
	}
	log.Printf("queue.EnqueueJob: job %s enqueued on %s as task %s", jobID, info.Queue, info.ID)
	return nil
}

// Forget deletes the job's task, typically an archived one left by a failed
// run, so the job can be enqueued again. A missing task is not an error.
func (e *AsynqEnqueuer) Forget(jobID uuid.UUID) error {
	err := e.inspector.DeleteTask(e.queue, jobID.String())
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return fmt.Errorf("queue.Forget: %s: %w", jobID, err)
}

func (e *AsynqEnqueuer) Close() error {
	return errors.Join(e.inspector.Close(), e.client.Close())
}

// PollingEnqueuer is the enqueuer for the Postgres backend, where a queued
// job row is the queue entry and the polling worker claims it.
type PollingEnqueuer struct{}

func NewPollingEnqueuer() port.JobEnqueuer {
	return PollingEnqueuer{}
}

func (PollingEnqueuer) EnqueueJob(_ context.Context, jobID uuid.UUID) error {
	log.Printf("queue.EnqueueJob: job %s left for the polling worker", jobID)
	return nil
}

// retriesAfterFirst converts an attempt budget into asynq's retry count.
func retriesAfterFirst(maxAttempts int) int {
	return max(maxAttempts-1, 0)
}
