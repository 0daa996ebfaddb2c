package repository

import (
	"context"

	"schoolapi/internal/model"
)

// CourseRepository defines data access for courses.
type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) (*model.Course, error)
	FindByID(ctx context.Context, id int64) (*model.Course, error)
	FindByCode(ctx context.Context, code string) (*model.Course, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Course], error)
	Update(ctx context.Context, c *model.Course) (*model.Course, error)
	Delete(ctx context.Context, id int64) error
}
