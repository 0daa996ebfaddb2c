package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
)

type MockRbacService struct {
	mock.Mock
}

func (m *MockRbacService) CreateRole(ctx context.Context, actor *model.User, name, description string) (*model.Role, error) {
	args := m.Called(ctx, actor, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRbacService) GetRole(ctx context.Context, actor *model.User, id int64) (*model.Role, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRbacService) ListRoles(ctx context.Context, actor *model.User) ([]model.Role, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRbacService) UpdateRole(ctx context.Context, actor *model.User, id int64, name, description string) (*model.Role, error) {
	args := m.Called(ctx, actor, id, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRbacService) DeleteRole(ctx context.Context, actor *model.User, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRbacService) GetMatrix(ctx context.Context, actor *model.User, roleID int64) (*model.RoleMatrix, error) {
	args := m.Called(ctx, actor, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleMatrix), args.Error(1)
}

func (m *MockRbacService) ListMatrix(ctx context.Context, actor *model.User) ([]model.RoleMatrix, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleMatrix), args.Error(1)
}

func (m *MockRbacService) UpdateMatrix(ctx context.Context, actor *model.User, roleID int64, grants map[string][]string) (*model.RoleMatrix, error) {
	args := m.Called(ctx, actor, roleID, grants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleMatrix), args.Error(1)
}

func (m *MockRbacService) DeleteMatrixEntry(ctx context.Context, actor *model.User, roleID, targetRoleID int64) (*model.RoleMatrix, error) {
	args := m.Called(ctx, actor, roleID, targetRoleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleMatrix), args.Error(1)
}

func (m *MockRbacService) GetSetting(ctx context.Context, actor *model.User, kind string) (*model.RoleSetting, error) {
	args := m.Called(ctx, actor, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleSetting), args.Error(1)
}

func (m *MockRbacService) UpdateSetting(ctx context.Context, actor *model.User, kind string, roleIDs []int64) (*model.RoleSetting, error) {
	args := m.Called(ctx, actor, kind, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleSetting), args.Error(1)
}

func (m *MockRbacService) ListPermissions(ctx context.Context, actor *model.User) ([]model.Permission, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Permission), args.Error(1)
}

func (m *MockRbacService) RolePermissions(ctx context.Context, actor *model.User, roleID int64) ([]string, error) {
	args := m.Called(ctx, actor, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
