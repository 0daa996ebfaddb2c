package repository

import (
	"context"

	"schoolapi/internal/model"
)

// StudentProfileRepository defines data access for student profiles.
type StudentProfileRepository interface {
	Create(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error)
	FindByID(ctx context.Context, id int64) (*model.StudentProfile, error)
	FindByUserID(ctx context.Context, userID int64) (*model.StudentProfile, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.StudentProfile], error)
	Update(ctx context.Context, p *model.StudentProfile) (*model.StudentProfile, error)
	Delete(ctx context.Context, id int64) error
}
