package port

import (
	"context"

	"github.com/google/uuid"
)

// JobEnqueuer hands a submitted job to the dispatch backend.
type JobEnqueuer interface {
	EnqueueJob(ctx context.Context, jobID uuid.UUID) error
}
