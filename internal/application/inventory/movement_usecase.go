package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// Notas de los movimientos que genera el sistema.
const (
	NoteInitialReceipt     = "Ingreso inicial"
	NoteQuantityCorrection = "Corrección de cantidad"
	NoteWriteOff           = "Baja"
)

// MovementUseCase registra, edita y elimina movimientos de stock.
// Cada mutación bloquea la fila del item (SELECT FOR UPDATE), valida contra el historial,
// escribe el movimiento, recalcula la caché del item y deja bitácora en la misma transacción.
type MovementUseCase struct {
	txRunner  TxRunner
	items     repository.ItemRepository
	movements repository.MovementRepository
	publisher EventPublisher
	rc        *Recalculator
	log       *logger.Logger
}

// NewMovementUseCase construye el caso de uso. publisher puede ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	publisher EventPublisher,
	rc *Recalculator,
	log *logger.Logger,
) *MovementUseCase {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MovementUseCase{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		publisher: publisher,
		rc:        rc,
		log:       log.WithComponent("movements"),
	}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	UserID   string
	ItemID   string
	Date     time.Time
	Type     string
	Quantity decimal.Decimal
	Notes    string
}

// RegisterMovement registra un movimiento. Las salidas y bajas se rechazan si superan
// lo disponible en el mes de la fecha del movimiento.
func (uc *MovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (*dto.MovementResponse, error) {
	typ := entity.MovementType(in.Type)
	if in.ItemID == "" || !typ.Valid() || in.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	qty, err := ParseQuantity(in.Quantity, false)
	if err != nil {
		return nil, err
	}
	date := ledger.Day(in.Date)

	var created *entity.Movement
	var item *entity.Item
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var movs []entity.Movement
		var err error
		item, movs, err = lockItem(ctx, r, in.ItemID)
		if err != nil {
			return err
		}
		if typ.IsIssue() {
			if err := ledger.CheckWriteOff(movs, ledger.MonthOf(date), qty); err != nil {
				return err
			}
		}
		created = &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Date:      date,
			Type:      typ,
			Quantity:  qty,
			Notes:     strings.TrimSpace(in.Notes),
			CreatedAt: uc.rc.Now(),
			CreatedBy: in.UserID,
		}
		if err := r.Movements.Create(ctx, created); err != nil {
			return fmt.Errorf("crear movimiento: %w", err)
		}
		if err := uc.rc.Apply(ctx, r, item, append(movs, *created)); err != nil {
			return err
		}
		return WriteAudit(ctx, r, uc.rc, item.ID, created.ID, entity.AuditMovementCreated, in.UserID,
			map[string]any{"movement": movementSnapshot(created)})
	})
	if err != nil {
		uc.logRejected(err, in.ItemID, string(typ), qty)
		return nil, err
	}

	uc.log.Info().
		Str("item_id", item.ID).
		Str("movement_id", created.ID).
		Str("type", string(created.Type)).
		Int64("quantity", created.Quantity).
		Msg("movimiento registrado")
	uc.publish(ctx, item, created, EventMovementCreated)
	return ToMovementResponse(created), nil
}

// UpdateMovementInput edición administrativa de un movimiento; campos nil no cambian.
// No aplica el control de stock: el historial puede quedar con saldos negativos (se registran en WARN).
type UpdateMovementInput struct {
	UserID     string
	MovementID string
	Date       *time.Time
	Type       *string
	Quantity   *decimal.Decimal
	Notes      *string
}

// UpdateMovement modifica un movimiento existente y recalcula el item.
func (uc *MovementUseCase) UpdateMovement(ctx context.Context, in UpdateMovementInput) (*dto.MovementResponse, error) {
	var updated *entity.Movement
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		m, err := r.Movements.GetByID(ctx, in.MovementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		var movs []entity.Movement
		item, movs, err = lockItem(ctx, r, m.ItemID)
		if err != nil {
			return err
		}
		before := *m
		if in.Date != nil {
			if in.Date.IsZero() {
				return domain.ErrInvalidInput
			}
			m.Date = ledger.Day(*in.Date)
		}
		if in.Type != nil {
			typ := entity.MovementType(*in.Type)
			if !typ.Valid() {
				return domain.ErrInvalidInput
			}
			m.Type = typ
		}
		if in.Quantity != nil {
			qty, err := ParseQuantity(*in.Quantity, false)
			if err != nil {
				return err
			}
			m.Quantity = qty
		}
		if in.Notes != nil {
			m.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := r.Movements.Update(ctx, m); err != nil {
			return fmt.Errorf("actualizar movimiento: %w", err)
		}
		for i := range movs {
			if movs[i].ID == m.ID {
				movs[i] = *m
			}
		}
		if err := uc.rc.Apply(ctx, r, item, movs); err != nil {
			return err
		}
		updated = m
		return WriteAudit(ctx, r, uc.rc, item.ID, m.ID, entity.AuditMovementUpdated, in.UserID,
			map[string]any{"before": movementSnapshot(&before), "after": movementSnapshot(m)})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("movement_id", updated.ID).Msg("movimiento actualizado")
	uc.publish(ctx, item, updated, EventMovementUpdated)
	return ToMovementResponse(updated), nil
}

// DeleteMovement elimina un movimiento y recalcula el item.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, userID, movementID string) error {
	var deleted *entity.Movement
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		m, err := r.Movements.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		var movs []entity.Movement
		item, movs, err = lockItem(ctx, r, m.ItemID)
		if err != nil {
			return err
		}
		if err := r.Movements.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("eliminar movimiento: %w", err)
		}
		rest := movs[:0]
		for _, mv := range movs {
			if mv.ID != m.ID {
				rest = append(rest, mv)
			}
		}
		if err := uc.rc.Apply(ctx, r, item, rest); err != nil {
			return err
		}
		deleted = m
		return WriteAudit(ctx, r, uc.rc, item.ID, m.ID, entity.AuditMovementDeleted, userID,
			map[string]any{"movement": movementSnapshot(m)})
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("item_id", item.ID).Str("movement_id", deleted.ID).Msg("movimiento eliminado")
	uc.publish(ctx, item, deleted, EventMovementDeleted)
	return nil
}

// WriteOffInput baja de unidades de un item en un mes del libro.
// Sin Date, la fecha se asigna con ledger.WriteOffDate.
type WriteOffInput struct {
	UserID   string
	ItemID   string
	Month    string
	Quantity decimal.Decimal
	Date     *time.Time
	Reason   string
}

// WriteOff da de baja unidades disponibles en el mes indicado.
func (uc *MovementUseCase) WriteOff(ctx context.Context, in WriteOffInput) (*dto.WriteOffResponse, error) {
	month, err := ledger.ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	qty, err := ParseQuantity(in.Quantity, false)
	if err != nil {
		return nil, err
	}
	date := ledger.Day(ledger.WriteOffDate(month, uc.rc.Now()))
	if in.Date != nil {
		if !month.Contains(*in.Date) {
			return nil, fmt.Errorf("%w: la fecha %s no pertenece a %s", domain.ErrInvalidInput, in.Date.Format("2006-01-02"), month)
		}
		date = ledger.Day(*in.Date)
	}
	notes := strings.TrimSpace(in.Reason)
	if notes == "" {
		notes = NoteWriteOff
	}

	var created *entity.Movement
	var item *entity.Item
	var balance ledger.MonthlyBalance
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var movs []entity.Movement
		var err error
		item, movs, err = lockItem(ctx, r, in.ItemID)
		if err != nil {
			return err
		}
		before := ledger.ComputeMonthlyBalance(movs, month)
		if err := ledger.CheckAvailable(before, qty); err != nil {
			return err
		}
		created = &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Date:      date,
			Type:      entity.MovementWriteOff,
			Quantity:  qty,
			Notes:     notes,
			CreatedAt: uc.rc.Now(),
			CreatedBy: in.UserID,
		}
		if err := r.Movements.Create(ctx, created); err != nil {
			return fmt.Errorf("crear baja: %w", err)
		}
		movs = append(movs, *created)
		if err := uc.rc.Apply(ctx, r, item, movs); err != nil {
			return err
		}
		balance = ledger.ComputeMonthlyBalance(movs, month)
		return WriteAudit(ctx, r, uc.rc, item.ID, created.ID, entity.AuditWriteOff, in.UserID, map[string]any{
			"month":     month.String(),
			"quantity":  qty,
			"available": before.Available(),
			"reason":    notes,
		})
	})
	if err != nil {
		uc.logRejected(err, in.ItemID, string(entity.MovementWriteOff), qty)
		return nil, err
	}

	uc.log.Info().
		Str("item_id", item.ID).
		Str("month", month.String()).
		Int64("quantity", qty).
		Int64("ending", balance.Ending).
		Msg("baja registrada")
	uc.publish(ctx, item, created, EventMovementCreated)
	return &dto.WriteOffResponse{
		Movement: *ToMovementResponse(created),
		Balance:  ToBalanceResponse(balance),
		Quantity: item.Quantity,
	}, nil
}

// CorrectionInput corrección manual de la cantidad actual de un item.
type CorrectionInput struct {
	UserID      string
	ItemID      string
	NewQuantity decimal.Decimal
	Reason      string
}

// CorrectQuantity ajusta la cantidad actual agregando un movimiento compensatorio.
// Un item sin historial recibe un "Ingreso inicial" con la fecha de alta del item; en otro caso
// se registra una entrada o salida fechada hoy. No edita movimientos existentes ni aplica
// el control de stock, por lo que puede dejar saldos negativos en meses pasados.
func (uc *MovementUseCase) CorrectQuantity(ctx context.Context, in CorrectionInput) (*dto.QuantityCorrectionResponse, error) {
	target, err := ParseQuantity(in.NewQuantity, true)
	if err != nil {
		return nil, err
	}

	var created *entity.Movement
	var item *entity.Item
	var previous int64
	err = uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		var movs []entity.Movement
		var err error
		item, movs, err = lockItem(ctx, r, in.ItemID)
		if err != nil {
			return err
		}
		previous = ledger.RecalculateCurrentQuantity(movs)
		if target == previous {
			return nil
		}
		// El delta sale del total sin acotar para que el cache quede exactamente en target.
		delta := target - ledger.SignedTotal(movs)
		m := &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			CreatedAt: uc.rc.Now(),
			CreatedBy: in.UserID,
		}
		switch {
		case len(movs) == 0:
			m.Type = entity.MovementIncoming
			m.Quantity = delta
			m.Date = ledger.Day(item.CreatedAt.In(uc.rc.Location()))
			m.Notes = NoteInitialReceipt
		case delta > 0:
			m.Type = entity.MovementIncoming
			m.Quantity = delta
			m.Date = uc.rc.Today()
			m.Notes = correctionNote(in.Reason)
		default:
			m.Type = entity.MovementOutgoing
			m.Quantity = -delta
			m.Date = uc.rc.Today()
			m.Notes = correctionNote(in.Reason)
		}
		if err := r.Movements.Create(ctx, m); err != nil {
			return fmt.Errorf("crear corrección: %w", err)
		}
		if err := uc.rc.Apply(ctx, r, item, append(movs, *m)); err != nil {
			return err
		}
		if item.Quantity != target {
			return fmt.Errorf("corrección: cantidad resultante %d distinta de %d", item.Quantity, target)
		}
		created = m
		return WriteAudit(ctx, r, uc.rc, item.ID, m.ID, entity.AuditQuantityCorrection, in.UserID, map[string]any{
			"previous_quantity": previous,
			"quantity":          target,
			"reason":            strings.TrimSpace(in.Reason),
			"movement":          movementSnapshot(m),
		})
	})
	if err != nil {
		return nil, err
	}

	out := &dto.QuantityCorrectionResponse{PreviousQuantity: previous, Quantity: target}
	if created == nil {
		return out, nil
	}
	uc.log.Info().
		Str("item_id", item.ID).
		Int64("previous_quantity", previous).
		Int64("quantity", target).
		Msg("cantidad corregida manualmente")
	uc.publish(ctx, item, created, EventQuantityCorrection)
	out.Movement = ToMovementResponse(created)
	return out, nil
}

// ListMovements historial de un item con filtros opcionales.
func (uc *MovementUseCase) ListMovements(ctx context.Context, itemID string, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	for _, t := range filter.Types {
		if !t.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	list, err := uc.movements.Search(ctx, itemID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for i := range list {
		out = append(out, *ToMovementResponse(&list[i]))
	}
	return &dto.MovementListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement obtiene un movimiento por ID.
func (uc *MovementUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return ToMovementResponse(m), nil
}

// lockItem bloquea la fila del item y carga su historial completo.
func lockItem(ctx context.Context, r Repos, itemID string) (*entity.Item, []entity.Movement, error) {
	item, err := r.Items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	movs, err := r.Movements.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("historial del item %s: %w", item.ID, err)
	}
	return item, movs, nil
}

func correctionNote(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return NoteQuantityCorrection
	}
	return NoteQuantityCorrection + ": " + reason
}

func (uc *MovementUseCase) logRejected(err error, itemID, typ string, qty int64) {
	if se, ok := domain.AsInsufficientStock(err); ok {
		uc.log.Warn().
			Str("item_id", itemID).
			Str("type", typ).
			Int64("requested", se.Requested).
			Int64("available", se.Available).
			Msg("movimiento rechazado por stock insuficiente")
		return
	}
	if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidQuantity) && !errors.Is(err, domain.ErrInvalidInput) {
		uc.log.Error().Err(err).Str("item_id", itemID).Msg("error registrando movimiento")
	}
}

// publish notifica después del commit; un fallo no revierte la operación.
func (uc *MovementUseCase) publish(ctx context.Context, item *entity.Item, m *entity.Movement, action string) {
	ev := MovementEvent{
		ItemID:     item.ID,
		MovementID: m.ID,
		Action:     action,
		Type:       string(m.Type),
		Quantity:   m.Quantity,
		ItemQty:    item.Quantity,
		OccurredAt: uc.rc.Now(),
	}
	if err := uc.publisher.Publish(ctx, ev); err != nil {
		uc.log.Error().Err(err).Str("item_id", item.ID).Str("action", action).Msg("no se pudo publicar evento de movimiento")
	}
}

// ToMovementResponse convierte la entidad a DTO.
func ToMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Date:      dto.Date{Time: m.Date},
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// ToBalanceResponse convierte el saldo mensual a DTO.
func ToBalanceResponse(b ledger.MonthlyBalance) dto.BalanceResponse {
	return dto.BalanceResponse{
		Opening:  b.Opening,
		Incoming: b.Incoming,
		Issued:   b.Issued,
		Ending:   b.Ending,
	}
}

// RecalculateItem reconstruye la caché de un item desde su historial. Devuelve true si cambió.
func (uc *MovementUseCase) RecalculateItem(ctx context.Context, itemID string) (bool, error) {
	changed := false
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r Repos) error {
		item, movs, err := lockItem(ctx, r, itemID)
		if err != nil {
			return err
		}
		before := *item
		if err := uc.rc.Apply(ctx, r, item, movs); err != nil {
			return err
		}
		changed = before.Quantity != item.Quantity ||
			before.Status != item.Status ||
			!sameDate(before.WrittenOffDate, item.WrittenOffDate)
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		uc.log.Info().Str("item_id", itemID).Msg("caché de item corregida")
	}
	return changed, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
