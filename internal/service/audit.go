package service

import (
	"context"
	"log"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

type metaKey struct{}

// RequestMeta carries request-scoped client details into audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// WithMeta attaches client metadata to the context for audit recording.
func WithMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func metaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(RequestMeta)
	return meta
}

// recorder writes audit entries for mutating operations. Failures are logged
// and never fail the operation they describe.
type recorder struct {
	repo repository.AuditRepository
}

func (r recorder) record(ctx context.Context, actor *model.User, action, resourceType string, resourceID int64, changes map[string]any) {
	if r.repo == nil {
		return
	}
	meta := metaFrom(ctx)
	entry := &model.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changes,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if actor != nil {
		entry.UserID = actor.ID
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		log.Printf("audit write failed for %s %s/%d: %v", action, resourceType, resourceID, err)
	}
}
