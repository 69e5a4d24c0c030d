// Package storage lays out where a job's objects live in the bucket.
package storage

import (
	"path"

	"github.com/google/uuid"
)

// SourceKey is where a job's uploaded analysis document is stored.
func SourceKey(jobID uuid.UUID) string {
	return path.Join("jobs", jobID.String(), "source.json")
}

// LayoutKey is where a page's layout document is stored.
func LayoutKey(jobID uuid.UUID, fileName string) string {
	return path.Join("jobs", jobID.String(), "layout", fileName)
}
