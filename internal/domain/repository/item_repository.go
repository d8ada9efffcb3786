package repository

import (
	"context"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para Item (DIP).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del item hasta el fin de la transacción (SELECT FOR UPDATE).
	// Serializa a los escritores de un mismo item.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// UpdateLedgerCache persiste solo los campos derivados (quantity, status, written_off_date).
	UpdateLedgerCache(ctx context.Context, item *entity.Item) error
	ListBySubcategory(ctx context.Context, subcategoryID string, limit, offset int) ([]*entity.Item, error)
	ListAll(ctx context.Context) ([]*entity.Item, error)
	CountBySubcategory(ctx context.Context, subcategoryID string) (int, error)
	// Delete elimina el item y en cascada sus movimientos.
	Delete(ctx context.Context, id string) error
}
