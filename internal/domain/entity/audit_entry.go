package entity

import (
	"encoding/json"
	"time"
)

// AuditAction acción registrada en la bitácora de un item.
type AuditAction string

// Acciones auditadas.
const (
	AuditItemCreated        AuditAction = "item_created"
	AuditItemDeleted        AuditAction = "item_deleted"
	AuditMovementCreated    AuditAction = "movement_created"
	AuditMovementUpdated    AuditAction = "movement_updated"
	AuditMovementDeleted    AuditAction = "movement_deleted"
	AuditWriteOff           AuditAction = "write_off"
	AuditQuantityCorrection AuditAction = "quantity_correction"
)

// AuditEntry registro de bitácora. Details guarda antes/después en JSON.
type AuditEntry struct {
	ID         string
	ItemID     string
	MovementID string
	Action     AuditAction
	UserID     string
	Details    json.RawMessage
	CreatedAt  time.Time
}
