package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// APIClient is a machine client allowed to submit jobs.
type APIClient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ClientID   string    `db:"client_id" json:"client_id"`
	SecretHash string    `db:"secret_hash" json:"-"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Job is one analysis result to normalize into layout documents and fields.
type Job struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ClientID      uuid.UUID `db:"client_id" json:"client_id"`
	Status        JobStatus `db:"status" json:"status"`
	SourceKey     string    `db:"source_key" json:"source_key"`
	SelectionMode string    `db:"selection_mode" json:"selection_mode"`
	RetentionMode string    `db:"retention_mode" json:"retention_mode"`
	FieldSuffix   string    `db:"field_suffix" json:"field_suffix"`
	UseAllPages   bool      `db:"use_all_pages" json:"use_all_pages"`
	Consolidate   bool      `db:"consolidate" json:"consolidate"`
	QualityAdjust bool      `db:"quality_adjust" json:"quality_adjust"`
	PageCount     int       `db:"page_count" json:"page_count"`
	Attempts      int       `db:"attempts" json:"attempts"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// JobPage is one document page of a job and the analysis page applied to it.
type JobPage struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	JobID        uuid.UUID       `db:"job_id" json:"job_id"`
	PageIndex    int             `db:"page_index" json:"page_index"`
	PageID       string          `db:"page_id" json:"page_id"`
	JSONPage     int             `db:"json_page" json:"json_page"`
	LayoutKey    string          `db:"layout_key" json:"layout_key"`
	FieldCount   int             `db:"field_count" json:"field_count"`
	Status       PageStatus      `db:"status" json:"status"`
	ErrorMessage string          `db:"error_message" json:"error_message"`
	Variables    json.RawMessage `db:"variables" json:"variables"`
}

// Field is one materialized field. Line items hang off their table field and
// cells off their line item through ParentID. Seq is the emission order
// within the page.
type Field struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	JobID         uuid.UUID       `db:"job_id" json:"job_id"`
	PageID        uuid.UUID       `db:"page_id" json:"page_id"`
	ParentID      *uuid.UUID      `db:"parent_id" json:"parent_id,omitempty"`
	Seq           int             `db:"seq" json:"seq"`
	Name          string          `db:"name" json:"name"`
	Type          string          `db:"type" json:"type"`
	Text          string          `db:"text" json:"text"`
	Status        int             `db:"status" json:"status"`
	Confidence    int             `db:"confidence" json:"confidence"`
	KeyClass      string          `db:"key_class" json:"key_class"`
	Tier          string          `db:"tier" json:"tier"`
	Sensitivity   bool            `db:"sensitivity" json:"sensitivity"`
	LineItemID    *int            `db:"line_item_id" json:"line_item_id,omitempty"`
	SeqLineItemID *int            `db:"seq_line_item_id" json:"seq_line_item_id,omitempty"`
	Pos           string          `db:"pos" json:"pos"`
	KeyPos        string          `db:"key_pos" json:"key_pos"`
	Variables     json.RawMessage `db:"variables" json:"variables"`
}
