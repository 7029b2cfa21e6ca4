package repository

import (
	"context"

	"zeno-access/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	// ListByOrg returns the org's audit logs, newest first.
	ListByOrg(ctx context.Context, orgID int64, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
