package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type pageRepo struct {
	db *sqlx.DB
}

// NewPageRepo creates a new PostgreSQL-backed PageRepository.
func NewPageRepo(db *sqlx.DB) port.PageRepository {
	return &pageRepo{db: db}
}

func (r *pageRepo) CreateBatch(ctx context.Context, pages []domain.JobPage) error {
	if len(pages) == 0 {
		return nil
	}
	for i := range pages {
		if len(pages[i].Variables) == 0 {
			pages[i].Variables = []byte("{}")
		}
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO job_pages (
			id, job_id, page_index, page_id, json_page, layout_key,
			field_count, status, error_message, variables
		) VALUES (
			:id, :job_id, :page_index, :page_id, :json_page, :layout_key,
			:field_count, :status, :error_message, :variables
		)`, pages)
	if err != nil {
		return fmt.Errorf("pageRepo.CreateBatch: %w", err)
	}
	return nil
}

func (r *pageRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.JobPage, error) {
	var pages []domain.JobPage
	err := r.db.SelectContext(ctx, &pages,
		"SELECT * FROM job_pages WHERE job_id = $1 ORDER BY page_index", jobID)
	if err != nil {
		return nil, fmt.Errorf("pageRepo.ListByJob: %w", err)
	}
	return pages, nil
}

func (r *pageRepo) GetByPageID(ctx context.Context, jobID uuid.UUID, pageID string) (*domain.JobPage, error) {
	var page domain.JobPage
	err := r.db.GetContext(ctx, &page,
		"SELECT * FROM job_pages WHERE job_id = $1 AND page_id = $2", jobID, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("pageRepo.GetByPageID: %w", err)
	}
	return &page, nil
}

func (r *pageRepo) Update(ctx context.Context, page *domain.JobPage) error {
	if len(page.Variables) == 0 {
		page.Variables = []byte("{}")
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE job_pages SET
			layout_key = $1, field_count = $2, status = $3,
			error_message = $4, variables = $5
		 WHERE id = $6`,
		page.LayoutKey, page.FieldCount, page.Status,
		page.ErrorMessage, page.Variables, page.ID)
	if err != nil {
		return fmt.Errorf("pageRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
