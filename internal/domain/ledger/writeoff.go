package ledger

import (
	"time"

	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// ValidateQuantity rechaza cantidades cero o negativas.
func ValidateQuantity(q int64) error {
	if q <= 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// CheckWriteOff control de admisión de una salida o baja de q unidades en month.
// No muta nada; el llamador debe tener bloqueado el item mientras registra el movimiento.
func CheckWriteOff(movements []entity.Movement, month Month, q int64) error {
	return CheckAvailable(ComputeMonthlyBalance(movements, month), q)
}

// CheckAvailable igual que CheckWriteOff sobre un saldo mensual ya calculado.
func CheckAvailable(b MonthlyBalance, q int64) error {
	if err := ValidateQuantity(q); err != nil {
		return err
	}
	available := b.Available()
	if q > available {
		if available < 0 {
			available = 0
		}
		return &domain.InsufficientStockError{Requested: q, Available: available}
	}
	return nil
}

// WriteOffDate fecha asignada a una baja de month sin fecha explícita:
// mes actual -> hoy; mes pasado -> último día; mes futuro -> primer día.
// now debe venir ya en la zona horaria del almacén.
func WriteOffDate(month Month, now time.Time) time.Time {
	loc := now.Location()
	switch month.Compare(MonthOf(now)) {
	case -1:
		return month.LastDay(loc)
	case 1:
		return month.FirstDay(loc)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
