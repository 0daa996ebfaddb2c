package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
	"schoolapi/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Dashboard(ctx context.Context, actor *model.User) (*service.Dashboard, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Dashboard), args.Error(1)
}

func (m *MockAdminService) AuditLogs(ctx context.Context, actor *model.User, limit, offset int) (*service.AuditListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditListResult), args.Error(1)
}
