package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"adpnorm/internal/domain"
)

// MockPageRepo is a mock implementation of port.PageRepository.
type MockPageRepo struct {
	mock.Mock
}

func (m *MockPageRepo) CreateBatch(ctx context.Context, pages []domain.JobPage) error {
	args := m.Called(ctx, pages)
	return args.Error(0)
}

func (m *MockPageRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.JobPage, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobPage), args.Error(1)
}

func (m *MockPageRepo) GetByPageID(ctx context.Context, jobID uuid.UUID, pageID string) (*domain.JobPage, error) {
	args := m.Called(ctx, jobID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPage), args.Error(1)
}

func (m *MockPageRepo) Update(ctx context.Context, page *domain.JobPage) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}
