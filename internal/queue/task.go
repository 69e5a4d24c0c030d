// Package queue dispatches normalization jobs through Redis with asynq, or
// leaves them to the Postgres polling worker.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TypeNormalizeJob is the asynq task type for one normalization job.
const TypeNormalizeJob = "normalize:job"

type normalizePayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// NewNormalizeTask builds the task that runs jobID.
func NewNormalizeTask(jobID uuid.UUID, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(normalizePayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("queue.NewNormalizeTask: %w", err)
	}
	return asynq.NewTask(TypeNormalizeJob, payload, opts...), nil
}

func parseNormalizeTask(t *asynq.Task) (uuid.UUID, error) {
	var p normalizePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return uuid.Nil, fmt.Errorf("queue: bad %s payload: %w", t.Type(), err)
	}
	if p.JobID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("queue: %s payload has no job id", t.Type())
	}
	return p.JobID, nil
}
