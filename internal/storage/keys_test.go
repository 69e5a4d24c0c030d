package storage_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"adpnorm/internal/storage"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7f1c4f4e-9d53-4c1b-8d7e-3f0a2b5c6d7e")

	assert.Equal(t, "jobs/7f1c4f4e-9d53-4c1b-8d7e-3f0a2b5c6d7e/source.json", storage.SourceKey(id))
	assert.Equal(t, "jobs/7f1c4f4e-9d53-4c1b-8d7e-3f0a2b5c6d7e/layout/p1_layout.xml", storage.LayoutKey(id, "p1_layout.xml"))
}
