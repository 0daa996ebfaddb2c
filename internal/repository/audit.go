package repository

import (
	"context"

	"schoolapi/internal/model"
)

// AuditRepository defines data access for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditLog) error

	// List returns audit entries newest-first with the actor email joined in.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.AuditLog], error)

	// Recent returns the n newest entries.
	Recent(ctx context.Context, n int) ([]model.AuditLog, error)
}
