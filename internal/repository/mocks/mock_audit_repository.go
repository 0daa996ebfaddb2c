package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, e *model.AuditLog) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.AuditLog], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.AuditLog]), args.Error(1)
}

func (m *MockAuditRepository) Recent(ctx context.Context, n int) ([]model.AuditLog, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLog), args.Error(1)
}
