package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"adpnorm/internal/domain"
	"adpnorm/internal/service"
)

// MockJobService is a mock implementation of service.JobService.
type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Submit(ctx context.Context, input *service.SubmitInput) (*domain.Job, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, clientID, jobID uuid.UUID) (*service.JobDetail, error) {
	args := m.Called(ctx, clientID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.JobDetail), args.Error(1)
}

func (m *MockJobService) List(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.Job, int, error) {
	args := m.Called(ctx, clientID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Int(1), args.Error(2)
}

func (m *MockJobService) Fields(ctx context.Context, clientID, jobID uuid.UUID) ([]domain.Field, error) {
	args := m.Called(ctx, clientID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Field), args.Error(1)
}

func (m *MockJobService) LayoutURL(ctx context.Context, clientID, jobID uuid.UUID, pageID string) (string, error) {
	args := m.Called(ctx, clientID, jobID, pageID)
	return args.String(0), args.Error(1)
}

func (m *MockJobService) Export(ctx context.Context, clientID, jobID uuid.UUID, format domain.ExportFormat) (*service.ExportOutput, error) {
	args := m.Called(ctx, clientID, jobID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportOutput), args.Error(1)
}

func (m *MockJobService) ProcessJob(ctx context.Context, job *domain.Job, maxAttempts int) {
	m.Called(ctx, job, maxAttempts)
}

func (m *MockJobService) Process(ctx context.Context, jobID uuid.UUID, maxAttempts int) error {
	args := m.Called(ctx, jobID, maxAttempts)
	return args.Error(0)
}
