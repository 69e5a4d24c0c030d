package port

import (
	"context"

	"adpnorm/internal/domain"
)

// Notifier announces that a job reached a final status.
type Notifier interface {
	JobFinished(ctx context.Context, job *domain.Job) error
}
