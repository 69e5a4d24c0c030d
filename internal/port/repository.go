package port

import (
	"context"

	"github.com/google/uuid"

	"adpnorm/internal/domain"
)

// APIClientRepository defines the contract for API client persistence.
type APIClientRepository interface {
	Create(ctx context.Context, client *domain.APIClient) error
	GetByClientID(ctx context.Context, clientID string) (*domain.APIClient, error)
}

// JobRepository defines the contract for job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.Job, int, error)
	// ClaimQueued moves up to limit queued jobs to processing, counting the
	// attempt, and returns them.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Job, error)
	UpdateStatus(ctx context.Context, job *domain.Job) error
	// Delete removes the job; its pages and fields go with it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// PageRepository defines the contract for job page persistence.
type PageRepository interface {
	CreateBatch(ctx context.Context, pages []domain.JobPage) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.JobPage, error)
	GetByPageID(ctx context.Context, jobID uuid.UUID, pageID string) (*domain.JobPage, error)
	Update(ctx context.Context, page *domain.JobPage) error
}

// FieldRepository defines the contract for field persistence.
type FieldRepository interface {
	// ReplaceForPage swaps the page's stored fields for fields in one
	// transaction.
	ReplaceForPage(ctx context.Context, pageID uuid.UUID, fields []domain.Field) error
	// ListByJob returns the job's fields ordered by page, then emission order.
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Field, error)
}
