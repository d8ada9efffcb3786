package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// Recalculator reconstruye los campos derivados de un item (cantidad, estado del mes actual,
// fecha de baja) a partir de su historial. Debe llamarse dentro de la tx que modificó el historial.
type Recalculator struct {
	clock Clock
	loc   *time.Location
	log   *logger.Logger
}

// NewRecalculator construye el recalculador. loc define qué día es "hoy".
func NewRecalculator(clock Clock, loc *time.Location, log *logger.Logger) *Recalculator {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Recalculator{clock: clock, loc: loc, log: log}
}

// Now hora actual en la zona del libro.
func (rc *Recalculator) Now() time.Time {
	return rc.clock().In(rc.loc)
}

// Today fecha de hoy normalizada a día calendario.
func (rc *Recalculator) Today() time.Time {
	return ledger.Day(rc.Now())
}

// CurrentMonth mes calendario actual.
func (rc *Recalculator) CurrentMonth() ledger.Month {
	return ledger.MonthOf(rc.Now())
}

// Location zona horaria del libro.
func (rc *Recalculator) Location() *time.Location {
	return rc.loc
}

// Apply recalcula y persiste la caché del item con el historial completo movements.
func (rc *Recalculator) Apply(ctx context.Context, r Repos, item *entity.Item, movements []entity.Movement) error {
	kind, err := RootKind(ctx, r, item.SubcategoryID)
	if err != nil {
		return err
	}
	before := item.Quantity
	item.Quantity = ledger.RecalculateCurrentQuantity(movements)
	item.WrittenOffDate = ledger.DepletionDate(movements)
	item.Status = kind.StatusFor(ledger.ItemStockState(item.WrittenOffDate, movements, rc.CurrentMonth()))
	item.UpdatedAt = rc.Now()
	if err := r.Items.UpdateLedgerCache(ctx, item); err != nil {
		return fmt.Errorf("actualizar caché del item %s: %w", item.ID, err)
	}
	rc.warnNegative(item, movements)
	rc.log.Debug().
		Str("item_id", item.ID).
		Int64("quantity_before", before).
		Int64("quantity", item.Quantity).
		Str("status", string(item.Status)).
		Msg("caché de item recalculada")
	return nil
}

// warnNegative registra la primera fecha en que el saldo acumulado queda negativo.
// Los saldos se acotan a 0 al informarse; aquí solo se deja constancia.
func (rc *Recalculator) warnNegative(item *entity.Item, movements []entity.Movement) {
	if len(movements) == 0 {
		return
	}
	sorted := append([]entity.Movement(nil), movements...)
	ledger.SortMovements(sorted)
	var running int64
	for _, m := range sorted {
		running += m.SignedQuantity()
		if running < 0 {
			rc.log.Warn().
				Str("item_id", item.ID).
				Str("date", m.Date.Format("2006-01-02")).
				Int64("balance", running).
				Msg("saldo negativo en el historial del item")
			return
		}
	}
}

// RootKind tipo de la categoría raíz de una subcategoría.
func RootKind(ctx context.Context, r Repos, subcategoryID string) (entity.CategoryKind, error) {
	cat, err := r.Categories.GetByID(ctx, subcategoryID)
	if err != nil {
		return "", err
	}
	if cat == nil {
		return "", fmt.Errorf("subcategoría %s: %w", subcategoryID, domain.ErrNotFound)
	}
	if cat.IsRoot() {
		return cat.Kind, nil
	}
	root, err := r.Categories.GetByID(ctx, cat.ParentID)
	if err != nil {
		return "", err
	}
	if root == nil {
		return "", fmt.Errorf("categoría %s: %w", cat.ParentID, domain.ErrNotFound)
	}
	return root.Kind, nil
}
