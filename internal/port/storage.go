package port

import (
	"context"
	"io"
)

// Object metadata keys attached to stored analysis results and layouts.
const (
	MetaJobID    = "job-id"
	MetaClientID = "client-id"
	MetaPageID   = "page-id"
)

// UploadInput describes one object to store. Metadata is stored with the
// object as user metadata.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// UploadOutput identifies the stored object.
type UploadOutput struct {
	Key       string
	ETag      string
	VersionID string
}

// ObjectStorage keeps analysis results and layout documents. Download fails
// with domain.ErrNotFound when the key does not exist.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
