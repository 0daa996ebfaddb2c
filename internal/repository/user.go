package repository

import (
	"context"
	"time"

	"schoolapi/internal/model"
)

// UserStats aggregates the dashboard counters over the users table.
type UserStats struct {
	Total    int
	Active   int
	Verified int
	NewSince int
}

// UserRepository defines data access for users using SQL queries only.
// No business logic here — strictly persistence operations.
// Find methods return the user with its role joined in when one is assigned.
type UserRepository interface {
	// Create inserts a new user and returns the stored record with
	// DB-assigned fields (id, created_at) populated.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*model.User, error)

	// List returns a page of users. roleIDs, when non-empty, restricts the
	// result to users whose role id is in the set.
	List(ctx context.Context, pq PageQuery, roleIDs []int64) (*PageResult[model.User], error)

	// Update writes all mutable columns and stamps updated_at.
	Update(ctx context.Context, u *model.User) (*model.User, error)

	// Delete removes a user by ID. It returns nil if the row did not exist.
	Delete(ctx context.Context, id int64) error

	// Stats returns dashboard counters; NewSince counts users created at or
	// after the given time.
	Stats(ctx context.Context, newSince time.Time) (*UserStats, error)
}
