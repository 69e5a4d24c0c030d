package ses

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"adpnorm/internal/domain"
)

func TestJobMessage(t *testing.T) {
	id := uuid.New()

	subject, body := jobMessage(&domain.Job{ID: id, Status: domain.JobStatusCompleted, PageCount: 3})
	assert.Contains(t, subject, "completed")
	assert.Contains(t, body, "3 page(s)")

	subject, body = jobMessage(&domain.Job{ID: id, Status: domain.JobStatusFailed, Attempts: 2, ErrorMessage: "bad json"})
	assert.Contains(t, subject, "failed")
	assert.Contains(t, body, "bad json")
	assert.Contains(t, buildJobHTML(&domain.Job{ID: id, Status: domain.JobStatusFailed, ErrorMessage: "bad json"}), "Error: bad json")
}
