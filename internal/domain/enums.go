package domain

// JobStatus represents the lifecycle of a normalization job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// PageStatus represents the outcome for one document page of a job.
type PageStatus string

const (
	PageStatusPending   PageStatus = "pending"
	PageStatusCompleted PageStatus = "completed"
	PageStatusFailed    PageStatus = "failed"
	// PageStatusMerged marks a page whose fields were moved to the first page.
	PageStatusMerged PageStatus = "merged"
)

// ExportFormat is a supported field export format.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportContentTypes maps export formats to their MIME content type.
var ExportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// AllowedSourceContentTypes lists the content types accepted for uploaded
// analysis results.
var AllowedSourceContentTypes = map[string]bool{
	"application/json":         true,
	"application/octet-stream": true,
	"text/plain":               true,
}

// FieldEntityType is the entityType variable carried by every field created
// from an analysis result.
const FieldEntityType = "ADP"
