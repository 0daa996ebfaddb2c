package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
	"schoolapi/internal/service"
)

type MockStudentProfileService struct {
	mock.Mock
}

func (m *MockStudentProfileService) Create(ctx context.Context, actor *model.User, in service.CreateProfileInput) (*model.StudentProfile, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileService) Get(ctx context.Context, actor *model.User, id int64) (*model.StudentProfile, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileService) GetByUser(ctx context.Context, actor *model.User, userID int64) (*model.StudentProfile, error) {
	args := m.Called(ctx, actor, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileService) List(ctx context.Context, actor *model.User, limit, offset int) (*service.ProfileListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProfileListResult), args.Error(1)
}

func (m *MockStudentProfileService) Update(ctx context.Context, actor *model.User, id int64, in service.UpdateProfileInput) (*model.StudentProfile, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileService) Delete(ctx context.Context, actor *model.User, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
