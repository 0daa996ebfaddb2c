package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
	"schoolapi/internal/service"
)

type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) Create(ctx context.Context, actor *model.User, in service.CreateCourseInput) (*model.Course, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Get(ctx context.Context, actor *model.User, id int64) (*model.Course, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) List(ctx context.Context, actor *model.User, limit, offset int) (*service.CourseListResult, error) {
	args := m.Called(ctx, actor, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CourseListResult), args.Error(1)
}

func (m *MockCourseService) Update(ctx context.Context, actor *model.User, id int64, in service.UpdateCourseInput) (*model.Course, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Delete(ctx context.Context, actor *model.User, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
