package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// ItemUseCase casos de uso CRUD para items. Cantidad, estado y fecha de baja se manejan vía movimientos.
type ItemUseCase struct {
	txRunner   inventory.TxRunner
	repo       repository.ItemRepository
	categories repository.CategoryRepository
	audit      repository.AuditRepository
	rc         *inventory.Recalculator
	log        *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	txRunner inventory.TxRunner,
	repo repository.ItemRepository,
	categories repository.CategoryRepository,
	audit repository.AuditRepository,
	rc *inventory.Recalculator,
	log *logger.Logger,
) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{
		txRunner:   txRunner,
		repo:       repo,
		categories: categories,
		audit:      audit,
		rc:         rc,
		log:        log.WithComponent("items"),
	}
}

// Create crea un item en una subcategoría. Con InitialQuantity > 0 registra el ingreso inicial.
func (uc *ItemUseCase) Create(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Unit) == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	initial, err := inventory.ParseQuantity(in.InitialQuantity, true)
	if err != nil {
		return nil, err
	}
	if err := uc.checkSubcategory(ctx, in.SubcategoryID); err != nil {
		return nil, err
	}

	now := uc.rc.Now()
	item := &entity.Item{
		ID:            uuid.New().String(),
		SubcategoryID: in.SubcategoryID,
		Name:          name,
		Unit:          strings.TrimSpace(in.Unit),
		Price:         in.Price,
		Supplier:      strings.TrimSpace(in.Supplier),
		TTNNumber:     strings.TrimSpace(in.TTNNumber),
		Status:        entity.StatusInStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		if err := r.Items.Create(ctx, item); err != nil {
			return err
		}
		var movs []entity.Movement
		if initial > 0 {
			date := uc.rc.Today()
			if t := in.ReceivedAt.Ptr(); t != nil {
				date = ledger.Day(*t)
			}
			m := entity.Movement{
				ID:        uuid.New().String(),
				ItemID:    item.ID,
				Date:      date,
				Type:      entity.MovementIncoming,
				Quantity:  initial,
				Notes:     inventory.NoteInitialReceipt,
				CreatedAt: now,
				CreatedBy: userID,
			}
			if err := r.Movements.Create(ctx, &m); err != nil {
				return fmt.Errorf("crear ingreso inicial: %w", err)
			}
			movs = append(movs, m)
		}
		if err := uc.rc.Apply(ctx, r, item, movs); err != nil {
			return err
		}
		return inventory.WriteAudit(ctx, r, uc.rc, item.ID, "", entity.AuditItemCreated, userID, map[string]any{
			"name":             item.Name,
			"subcategory_id":   item.SubcategoryID,
			"initial_quantity": initial,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Int64("initial_quantity", initial).Msg("item creado")
	return toItemResponse(item), nil
}

// GetByID obtiene un item por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return toItemResponse(item), nil
}

// Update actualiza los datos descriptivos del item. Al cambiar de subcategoría se recalcula el estado.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if in.SubcategoryID != nil {
		if err := uc.checkSubcategory(ctx, *in.SubcategoryID); err != nil {
			return nil, err
		}
	}
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		var err error
		item, err = r.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return domain.ErrInvalidInput
			}
			item.Name = name
		}
		if in.Unit != nil {
			item.Unit = strings.TrimSpace(*in.Unit)
		}
		if in.Price != nil {
			if in.Price.IsNegative() {
				return domain.ErrInvalidInput
			}
			item.Price = *in.Price
		}
		if in.Supplier != nil {
			item.Supplier = strings.TrimSpace(*in.Supplier)
		}
		if in.TTNNumber != nil {
			item.TTNNumber = strings.TrimSpace(*in.TTNNumber)
		}
		moved := in.SubcategoryID != nil && *in.SubcategoryID != item.SubcategoryID
		if moved {
			item.SubcategoryID = *in.SubcategoryID
		}
		item.UpdatedAt = uc.rc.Now()
		if err := r.Items.Update(ctx, item); err != nil {
			return err
		}
		if !moved {
			return nil
		}
		movs, err := r.Movements.ListByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		return uc.rc.Apply(ctx, r, item, movs)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista items; con subcategoryID filtra por subcategoría.
func (uc *ItemUseCase) List(ctx context.Context, subcategoryID string, limit, offset int) (*dto.ItemListResponse, error) {
	var list []*entity.Item
	var err error
	total := 0
	if subcategoryID != "" {
		list, err = uc.repo.ListBySubcategory(ctx, subcategoryID, limit, offset)
		if err == nil {
			total, err = uc.repo.CountBySubcategory(ctx, subcategoryID)
		}
	} else {
		list, err = uc.repo.ListAll(ctx)
		total = len(list)
		list = page(list, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina el item junto con su historial. La bitácora se conserva.
func (uc *ItemUseCase) Delete(ctx context.Context, userID, id string) error {
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.Repos) error {
		item, err := r.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := inventory.WriteAudit(ctx, r, uc.rc, item.ID, "", entity.AuditItemDeleted, userID, map[string]any{
			"name":     item.Name,
			"quantity": item.Quantity,
		}); err != nil {
			return err
		}
		return r.Items.Delete(ctx, item.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("item_id", id).Msg("item eliminado")
	return nil
}

// History bitácora del item, más reciente primero.
func (uc *ItemUseCase) History(ctx context.Context, id string, limit, offset int) ([]dto.AuditEntryResponse, error) {
	entries, err := uc.audit.ListByItem(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AuditEntryResponse{
			ID:         e.ID,
			MovementID: e.MovementID,
			Action:     string(e.Action),
			UserID:     e.UserID,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}

// checkSubcategory exige que el item cuelgue de una subcategoría existente, no de una raíz.
func (uc *ItemUseCase) checkSubcategory(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	sub, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return domain.ErrNotFound
	}
	if sub.IsRoot() {
		return fmt.Errorf("%w: los items se asignan a una subcategoría", domain.ErrInvalidInput)
	}
	return nil
}

func page(list []*entity.Item, limit, offset int) []*entity.Item {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:             it.ID,
		SubcategoryID:  it.SubcategoryID,
		Name:           it.Name,
		Unit:           it.Unit,
		Price:          it.Price,
		Supplier:       it.Supplier,
		TTNNumber:      it.TTNNumber,
		Quantity:       it.Quantity,
		Status:         string(it.Status),
		WrittenOffDate: dto.NewDate(it.WrittenOffDate),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}
