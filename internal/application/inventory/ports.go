package inventory

import (
	"context"
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Items      repository.ItemRepository
	Movements  repository.MovementRepository
	Categories repository.CategoryRepository
	Audit      repository.AuditRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// Acciones publicadas en MovementEvent.
const (
	EventMovementCreated    = "created"
	EventMovementUpdated    = "updated"
	EventMovementDeleted    = "deleted"
	EventQuantityCorrection = "quantity_corrected"
)

// MovementEvent notificación emitida después del commit de una mutación de movimientos.
type MovementEvent struct {
	ItemID     string    `json:"item_id"`
	MovementID string    `json:"movement_id,omitempty"`
	Action     string    `json:"action"`
	Type       string    `json:"type,omitempty"`
	Quantity   int64     `json:"quantity,omitempty"`
	ItemQty    int64     `json:"item_quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publica eventos de movimientos hacia sistemas externos.
type EventPublisher interface {
	Publish(ctx context.Context, event MovementEvent) error
}

// NoopPublisher descarta los eventos (AMQP deshabilitado).
type NoopPublisher struct{}

// Publish implementa EventPublisher.
func (NoopPublisher) Publish(context.Context, MovementEvent) error { return nil }

// Clock fuente de la hora actual; se inyecta para fijar el "mes actual" en tests.
type Clock func() time.Time
