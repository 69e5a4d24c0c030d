package noop

import (
	"context"
	"log"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a Notifier that only logs.
func NewNoopNotifier() port.Notifier {
	return noopNotifier{}
}

func (noopNotifier) JobFinished(_ context.Context, job *domain.Job) error {
	log.Printf("[NOOP EMAIL] job %s finished: status=%s pages=%d error=%q",
		job.ID, job.Status, job.PageCount, job.ErrorMessage)
	return nil
}
