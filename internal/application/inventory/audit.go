package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

type auditMovement struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

func movementSnapshot(m *entity.Movement) *auditMovement {
	if m == nil {
		return nil
	}
	return &auditMovement{
		ID:       m.ID,
		Date:     m.Date.Format("2006-01-02"),
		Type:     string(m.Type),
		Quantity: m.Quantity,
		Notes:    m.Notes,
	}
}

// WriteAudit agrega una entrada a la bitácora del item dentro de la tx actual.
func WriteAudit(ctx context.Context, r Repos, rc *Recalculator, itemID, movementID string, action entity.AuditAction, userID string, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("serializar bitácora: %w", err)
	}
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		ItemID:     itemID,
		MovementID: movementID,
		Action:     action,
		UserID:     userID,
		Details:    raw,
		CreatedAt:  rc.Now(),
	}
	if err := r.Audit.Create(ctx, entry); err != nil {
		return fmt.Errorf("registrar bitácora %s: %w", action, err)
	}
	return nil
}
