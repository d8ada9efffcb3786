package repository

import (
	"context"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	// ListAll devuelve raíces y subcategorías ordenadas por sort_order y nombre.
	ListAll(ctx context.Context) ([]*entity.Category, error)
	CountChildren(ctx context.Context, parentID string) (int, error)
	Delete(ctx context.Context, id string) error
}
