package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type jobRepo struct {
	db *sqlx.DB
}

// NewJobRepo creates a new PostgreSQL-backed JobRepository.
func NewJobRepo(db *sqlx.DB) port.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO jobs (
		id, client_id, status, source_key,
		selection_mode, retention_mode, field_suffix,
		use_all_pages, consolidate, quality_adjust,
		page_count, attempts, error_message, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10,
		$11, $12, $13, $14, $15
	)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.ClientID, job.Status, job.SourceKey,
		job.SelectionMode, job.RetentionMode, job.FieldSuffix,
		job.UseAllPages, job.Consolidate, job.QualityAdjust,
		job.PageCount, job.Attempts, job.ErrorMessage, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("jobRepo.Create: %w", err)
	}
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.GetContext(ctx, &job, "SELECT * FROM jobs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("jobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *jobRepo) ListByClient(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM jobs WHERE client_id = $1", clientID)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByClient count: %w", err)
	}

	var jobs []domain.Job
	err = r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE client_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("jobRepo.ListByClient: %w", err)
	}
	return jobs, total, nil
}

func (r *jobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.SelectContext(ctx, &jobs,
		`UPDATE jobs SET status = $1, attempts = attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM jobs WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.JobStatusProcessing, domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("jobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

func (r *jobRepo) UpdateStatus(ctx context.Context, job *domain.Job) error {
	job.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET
			status = $1, page_count = $2, attempts = $3,
			error_message = $4, updated_at = $5
		 WHERE id = $6`,
		job.Status, job.PageCount, job.Attempts,
		job.ErrorMessage, job.UpdatedAt, job.ID)
	if err != nil {
		return fmt.Errorf("jobRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("jobRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
