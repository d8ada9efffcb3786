package postgres

import (
	"context"
	"fmt"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de cambios sobre PostgreSQL. item_id no tiene FK: la bitácora sobrevive al item.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste una entrada de bitácora.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (id, item_id, movement_id, action, user_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	details := []byte(e.Details)
	if len(details) == 0 {
		details = []byte("{}")
	}
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ItemID, nullable(e.MovementID), string(e.Action), nullable(e.UserID), details, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByItem bitácora de un item, más reciente primero.
func (r *AuditRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, item_id, movement_id, action, user_id, details, created_at
		FROM audit_entries WHERE item_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.AuditEntry, 0)
	for rows.Next() {
		var e entity.AuditEntry
		var movementID, userID *string
		var action string
		var details []byte
		if err := rows.Scan(&e.ID, &e.ItemID, &movementID, &action, &userID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if movementID != nil {
			e.MovementID = *movementID
		}
		if userID != nil {
			e.UserID = *userID
		}
		e.Action = entity.AuditAction(action)
		e.Details = details
		list = append(list, &e)
	}
	return list, rows.Err()
}
