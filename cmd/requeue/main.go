// Command requeue puts failed jobs back in the queue with a fresh attempt
// budget. Pages and fields of a requeued job are rebuilt when it runs again.
// With -status queued it re-enqueues queued jobs whose task was lost.
// Usage: go run ./cmd/requeue [-status failed|queued] [-limit 100] [-dry-run]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"adpnorm/internal/config"
	"adpnorm/internal/domain"
	"adpnorm/internal/port"
	"adpnorm/internal/queue"
	"adpnorm/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	limit := flag.Int("limit", 0, "stop after this many jobs (0 for all)")
	dryRun := flag.Bool("dry-run", false, "list the jobs without requeueing them")
	statusFlag := flag.String("status", string(domain.JobStatusFailed), "jobs to pick up: failed or queued")
	flag.Parse()

	status := domain.JobStatus(*statusFlag)
	if status != domain.JobStatusFailed && status != domain.JobStatusQueued {
		return fmt.Errorf("-status must be failed or queued, got %q", *statusFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	jobRepo := postgres.NewJobRepo(db)

	var enqueuer port.JobEnqueuer = queue.NewPollingEnqueuer()
	var tasks *queue.AsynqEnqueuer
	if cfg.Queue.Backend == config.QueueBackendAsynq {
		tasks, err = queue.NewAsynqEnqueuer(cfg.Queue)
		if err != nil {
			return fmt.Errorf("creating task client: %w", err)
		}
		defer func() { _ = tasks.Close() }()
		enqueuer = tasks
	}

	ctx := context.Background()
	offset := 0
	total := 0

	for {
		var jobs []domain.Job
		err := db.SelectContext(ctx, &jobs,
			`SELECT * FROM jobs WHERE status = $1
			 ORDER BY created_at
			 LIMIT $2 OFFSET $3`, status, batchSize, offset)
		if err != nil {
			return fmt.Errorf("querying %s jobs at offset %d: %w", status, offset, err)
		}
		if len(jobs) == 0 {
			break
		}

		requeued := 0
		for i := range jobs {
			job := &jobs[i]
			if *limit > 0 && total >= *limit {
				break
			}
			if *dryRun {
				log.Printf("would requeue job %s (%d attempts): %s", job.ID, job.Attempts, job.ErrorMessage)
				total++
				continue
			}

			if status == domain.JobStatusFailed {
				if tasks != nil {
					if err := tasks.Forget(job.ID); err != nil {
						log.Printf("WARN: skipping job %s: %v", job.ID, err)
						continue
					}
				}
				job.Status = domain.JobStatusQueued
				job.Attempts = 0
				job.ErrorMessage = ""
				if err := jobRepo.UpdateStatus(ctx, job); err != nil {
					log.Printf("WARN: skipping job %s: %v", job.ID, err)
					continue
				}
				requeued++
			}
			if err := enqueuer.EnqueueJob(ctx, job.ID); err != nil {
				log.Printf("WARN: job %s queued but not enqueued: %v", job.ID, err)
			}
			total++
		}

		if *limit > 0 && total >= *limit {
			break
		}
		// requeued jobs leave the selected set, so only the rest shift the window
		offset += len(jobs) - requeued
		log.Printf("Processed %d %s jobs so far", total, status)
	}

	log.Printf("Requeue complete: %d jobs", total)
	return nil
}
