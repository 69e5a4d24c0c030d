package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateClientID   = errors.New("client id already exists")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrMalformedDocument   = errors.New("analysis result is not valid JSON")
	ErrADPConfiguration    = errors.New("analysis service base URL is not configured")
	ErrNoPages             = errors.New("job has no pages")
	ErrJobNotFinished      = errors.New("job has not finished processing")
	ErrUnsupportedExport   = errors.New("unsupported export format")
	ErrLayoutNotAvailable  = errors.New("layout document is not available for this page")
	ErrPageIndexOutOfRange = errors.New("analysis result has no such page")
	ErrInvalidPageIDs      = errors.New("page ids must be unique and non-empty")
)

// Job error codes.
const (
	JobErrorSourceUnavailable = "SOURCE_UNAVAILABLE"
	JobErrorMalformedSource   = "MALFORMED_SOURCE"
	JobErrorStorage           = "STORAGE_FAILED"
	JobErrorPersistence       = "PERSISTENCE_FAILED"
)

// JobError is a failure while processing a job. Retryable failures are
// handed back to the queue; the rest fail the job immediately.
type JobError struct {
	Code      string
	Retryable bool
	Err       error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a JobError marked retryable.
func IsRetryable(err error) bool {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.Retryable
	}
	return false
}
