package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"adpnorm/internal/domain"
)

// MockAPIClientRepo is a mock implementation of port.APIClientRepository.
type MockAPIClientRepo struct {
	mock.Mock
}

func (m *MockAPIClientRepo) Create(ctx context.Context, client *domain.APIClient) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockAPIClientRepo) GetByClientID(ctx context.Context, clientID string) (*domain.APIClient, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIClient), args.Error(1)
}
