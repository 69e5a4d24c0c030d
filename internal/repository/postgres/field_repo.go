package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type fieldRepo struct {
	db *sqlx.DB
}

// NewFieldRepo creates a new PostgreSQL-backed FieldRepository.
func NewFieldRepo(db *sqlx.DB) port.FieldRepository {
	return &fieldRepo{db: db}
}

const insertField = `INSERT INTO fields (
	id, job_id, page_id, parent_id, seq, name, type, text, status,
	confidence, key_class, tier, sensitivity, line_item_id, seq_line_item_id,
	pos, key_pos, variables
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9,
	$10, $11, $12, $13, $14, $15,
	$16, $17, $18
)`

func (r *fieldRepo) ReplaceForPage(ctx context.Context, pageID uuid.UUID, fields []domain.Field) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("fieldRepo.ReplaceForPage begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields WHERE page_id = $1", pageID); err != nil {
		return fmt.Errorf("fieldRepo.ReplaceForPage delete: %w", err)
	}

	if len(fields) > 0 {
		stmt, err := tx.PreparexContext(ctx, insertField)
		if err != nil {
			return fmt.Errorf("fieldRepo.ReplaceForPage prepare: %w", err)
		}
		defer stmt.Close()

		// parents precede their children, so parent_id references resolve
		for i := range fields {
			f := &fields[i]
			_, err := stmt.ExecContext(ctx,
				f.ID, f.JobID, f.PageID, f.ParentID, f.Seq, f.Name, f.Type, f.Text, f.Status,
				f.Confidence, f.KeyClass, f.Tier, f.Sensitivity, f.LineItemID, f.SeqLineItemID,
				f.Pos, f.KeyPos, f.Variables)
			if err != nil {
				return fmt.Errorf("fieldRepo.ReplaceForPage insert %s: %w", f.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("fieldRepo.ReplaceForPage commit: %w", err)
	}
	return nil
}

func (r *fieldRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Field, error) {
	var fields []domain.Field
	err := r.db.SelectContext(ctx, &fields,
		`SELECT f.* FROM fields f
		 JOIN job_pages p ON p.id = f.page_id
		 WHERE f.job_id = $1
		 ORDER BY p.page_index, f.seq`, jobID)
	if err != nil {
		return nil, fmt.Errorf("fieldRepo.ListByJob: %w", err)
	}
	return fields, nil
}
