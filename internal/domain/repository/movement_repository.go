package repository

import (
	"context"
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos de un item.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	Types  []entity.MovementType
	Limit  int
	Offset int
}

// MovementRepository define el puerto de persistencia para movimientos de stock.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	Update(ctx context.Context, movement *entity.Movement) error
	Delete(ctx context.Context, id string) error
	// ListByItem devuelve el historial completo del item (sin paginar), base del libro mensual.
	ListByItem(ctx context.Context, itemID string) ([]entity.Movement, error)
	// ListByItems devuelve los historiales de varios items agrupados por item.
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]entity.Movement, error)
	Search(ctx context.Context, itemID string, filter MovementFilter) ([]entity.Movement, error)
}
