package service

import (
	"context"
	"log"
	"sync"
	"time"

	"adpnorm/internal/port"
)

// JobQueueConfig holds settings for the job queue worker.
type JobQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
	JobTimeout   time.Duration
}

// JobQueueWorker polls for queued jobs and dispatches them for normalization.
type JobQueueWorker struct {
	jobRepo    port.JobRepository
	jobService JobService
	cfg        JobQueueConfig
	wg         sync.WaitGroup
}

// NewJobQueueWorker creates a new JobQueueWorker.
func NewJobQueueWorker(jobRepo port.JobRepository, jobService JobService, cfg JobQueueConfig) *JobQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &JobQueueWorker{
		jobRepo:    jobRepo,
		jobService: jobService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *JobQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("jobQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("jobQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			log.Printf("jobQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *JobQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	jobs, err := w.jobRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("jobQueueWorker: ClaimQueued error: %v", err)
		}
		return
	}

	for i := range jobs {
		job := jobs[i]

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// in-flight jobs outlive the poll context
			jobCtx, cancel := context.WithTimeout(context.Background(), w.cfg.JobTimeout)
			defer cancel()

			log.Printf("jobQueueWorker: dispatching job %s (attempt %d)", job.ID, job.Attempts)
			w.jobService.ProcessJob(jobCtx, &job, w.cfg.MaxRetries)
		}()
	}
}

// Wait blocks until every dispatched job has finished.
func (w *JobQueueWorker) Wait() {
	w.wg.Wait()
}
