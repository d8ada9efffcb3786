package ledger

import (
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// ShouldItemBeVisible decide si el item aparece en el reporte de month. Primera regla que aplica:
//  1. tiene algún movimiento dentro del mes;
//  2. el saldo con signo anterior al mes es > 0;
//  3. tiene una entrada dentro del mes;
//  4. en otro caso no se muestra.
//
// Las categorías y subcategorías nunca se ocultan; esta regla es solo para items.
func ShouldItemBeVisible(movements []entity.Movement, month Month) bool {
	for _, m := range movements {
		if month.Contains(m.Date) {
			return true
		}
	}
	if signedBalanceBefore(movements, month) > 0 {
		return true
	}
	for _, m := range movements {
		if m.Type == entity.MovementIncoming && month.Contains(m.Date) {
			return true
		}
	}
	return false
}

// ItemStockState estado del item en month, antes de traducirlo a una etiqueta de dominio.
// Si writtenOff cae en el mes, el item está dado de baja. Para un item con baja registrada,
// también lo está cualquier otro mes en el que quedó en cero (ver DepletionDates), así un
// agotamiento posterior no cambia la etiqueta de meses anteriores. En otro caso se agota
// cuando la cantidad con signo acumulada hasta el mes es <= 0.
func ItemStockState(writtenOff *time.Time, movements []entity.Movement, month Month) entity.StockState {
	if writtenOff != nil {
		if month.Contains(*writtenOff) {
			return entity.StateWrittenOff
		}
		for _, d := range DepletionDates(movements) {
			if month.Contains(d) {
				return entity.StateWrittenOff
			}
		}
	}
	if signedBalanceThrough(movements, month) <= 0 {
		return entity.StateDepleted
	}
	return entity.StateInStock
}

// DepletionDate fecha del último movimiento que llevó el saldo cronológico de > 0 a <= 0
// en un mes que además cierra con saldo 0. Una entrada posterior no la borra.
// Devuelve nil si el item nunca quedó en cero.
func DepletionDate(movements []entity.Movement) *time.Time {
	dates := DepletionDates(movements)
	if len(dates) == 0 {
		return nil
	}
	d := dates[len(dates)-1]
	return &d
}

// DepletionDates todas las fechas de agotamiento en orden cronológico, con el mismo
// criterio que DepletionDate.
func DepletionDates(movements []entity.Movement) []time.Time {
	if len(movements) == 0 {
		return nil
	}
	sorted := make([]entity.Movement, len(movements))
	copy(sorted, movements)
	SortMovements(sorted)

	var candidates []time.Time
	var running int64
	for _, m := range sorted {
		before := running
		running += m.SignedQuantity()
		if before > 0 && running <= 0 {
			candidates = append(candidates, m.Date)
		}
	}
	var out []time.Time
	for _, d := range candidates {
		if ComputeMonthlyBalance(movements, MonthOf(d)).Ending == 0 {
			out = append(out, d)
		}
	}
	return out
}
