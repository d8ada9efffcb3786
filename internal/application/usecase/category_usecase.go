package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías de dos niveles.
type CategoryUseCase struct {
	repo  repository.CategoryRepository
	items repository.ItemRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, items repository.ItemRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, items: items}
}

// Create crea una categoría raíz o, con ParentID, una subcategoría que hereda el tipo de la raíz.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	kind := entity.CategoryKind(in.Kind)
	if in.ParentID != "" {
		parent, err := uc.repo.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrNotFound
		}
		if !parent.IsRoot() {
			return nil, fmt.Errorf("%w: solo se admiten dos niveles de categoría", domain.ErrInvalidInput)
		}
		kind = parent.Kind
	}
	if kind == "" {
		kind = entity.KindSpareParts
	}
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	category := &entity.Category{
		ID:        uuid.New().String(),
		ParentID:  in.ParentID,
		Name:      name,
		Kind:      kind,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID obtiene una categoría por ID.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}
	return toCategoryResponse(category), nil
}

// Update actualiza una categoría. El tipo solo se cambia en la raíz.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		category.Name = name
	}
	if in.Kind != nil {
		kind := entity.CategoryKind(*in.Kind)
		if !category.IsRoot() || !kind.Valid() {
			return nil, domain.ErrInvalidInput
		}
		category.Kind = kind
	}
	if in.SortOrder != nil {
		category.SortOrder = *in.SortOrder
	}
	category.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Tree lista las categorías raíz con sus subcategorías.
func (uc *CategoryUseCase) Tree(ctx context.Context) ([]dto.CategoryTreeNode, error) {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]dto.CategoryTreeNode, 0)
	index := make(map[string]int)
	for _, c := range list {
		if c.IsRoot() {
			index[c.ID] = len(nodes)
			nodes = append(nodes, dto.CategoryTreeNode{
				CategoryResponse: *toCategoryResponse(c),
				Subcategories:    make([]dto.CategoryResponse, 0),
			})
		}
	}
	for _, c := range list {
		if i, ok := index[c.ParentID]; ok && !c.IsRoot() {
			nodes[i].Subcategories = append(nodes[i].Subcategories, *toCategoryResponse(c))
		}
	}
	return nodes, nil
}

// Delete elimina una categoría vacía. Con subcategorías o items devuelve ErrConflict.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}
	children, err := uc.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("%w: la categoría tiene subcategorías", domain.ErrConflict)
	}
	items, err := uc.items.CountBySubcategory(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return fmt.Errorf("%w: la subcategoría tiene items", domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
