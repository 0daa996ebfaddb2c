package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

type MockStudentProfileRepository struct {
	mock.Mock
}

func (m *MockStudentProfileRepository) Create(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileRepository) FindByID(ctx context.Context, id int64) (*model.StudentProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileRepository) FindByUserID(ctx context.Context, userID int64) (*model.StudentProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.StudentProfile], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.StudentProfile]), args.Error(1)
}

func (m *MockStudentProfileRepository) Update(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StudentProfile), args.Error(1)
}

func (m *MockStudentProfileRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
