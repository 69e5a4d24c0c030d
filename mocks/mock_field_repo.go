package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"adpnorm/internal/domain"
)

// MockFieldRepo is a mock implementation of port.FieldRepository.
type MockFieldRepo struct {
	mock.Mock
}

func (m *MockFieldRepo) ReplaceForPage(ctx context.Context, pageID uuid.UUID, fields []domain.Field) error {
	args := m.Called(ctx, pageID, fields)
	return args.Error(0)
}

func (m *MockFieldRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Field, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Field), args.Error(1)
}
