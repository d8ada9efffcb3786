package repository

import (
	"context"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// AuditRepository bitácora de cambios por item.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.AuditEntry, error)
}
