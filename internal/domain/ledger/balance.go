package ledger

import (
	"sort"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

// MonthlyBalance hoja de saldo de un item para un mes. Se calcula en cada petición y no se guarda.
// Opening y Ending están acotados a >= 0; Incoming e Issued son sumas crudas del mes.
// RawOpening y RawEnding conservan los valores con signo antes de acotar.
type MonthlyBalance struct {
	Opening    int64 `json:"opening"`
	Incoming   int64 `json:"incoming"`
	Issued     int64 `json:"issued"`
	Ending     int64 `json:"ending"`
	RawOpening int64 `json:"-"`
	RawEnding  int64 `json:"-"`
}

// Available cantidad que puede salir en el mes: apertura + entradas - salidas.
func (b MonthlyBalance) Available() int64 {
	return b.Opening + b.Incoming - b.Issued
}

// Clamped indica si alguno de los bordes tuvo que acotarse (historial inconsistente).
func (b MonthlyBalance) Clamped() bool {
	return b.RawOpening < 0 || b.RawEnding < 0
}

// ComputeMonthlyBalance reconstruye el saldo de month a partir del historial completo.
// El orden de movements no importa. Transfer no suma en ningún cubo; write_off resta como outgoing.
func ComputeMonthlyBalance(movements []entity.Movement, month Month) MonthlyBalance {
	var b MonthlyBalance
	for _, m := range movements {
		switch MonthOf(m.Date).Compare(month) {
		case -1:
			b.RawOpening += m.SignedQuantity()
		case 0:
			switch m.Type {
			case entity.MovementIncoming:
				b.Incoming += m.Quantity
			case entity.MovementOutgoing, entity.MovementWriteOff:
				b.Issued += m.Quantity
			case entity.MovementTransfer:
			}
		}
	}
	b.Opening = clampZero(b.RawOpening)
	b.RawEnding = b.Opening + b.Incoming - b.Issued
	b.Ending = clampZero(b.RawEnding)
	return b
}

// signedBalanceBefore suma con signo de todo lo anterior a month, sin acotar.
func signedBalanceBefore(movements []entity.Movement, month Month) int64 {
	var total int64
	for _, m := range movements {
		if MonthOf(m.Date).Before(month) {
			total += m.SignedQuantity()
		}
	}
	return total
}

// signedBalanceThrough suma con signo de todo lo que cae en month o antes.
func signedBalanceThrough(movements []entity.Movement, month Month) int64 {
	var total int64
	for _, m := range movements {
		if !MonthOf(m.Date).After(month) {
			total += m.SignedQuantity()
		}
	}
	return total
}

// RecalculateCurrentQuantity cantidad total actual: entradas - (salidas + bajas), acotada a >= 0.
// Es la única fuente para el campo Quantity cacheado del item.
func RecalculateCurrentQuantity(movements []entity.Movement) int64 {
	return clampZero(SignedTotal(movements))
}

// SignedTotal suma con signo de todo el historial, sin acotar. Puede ser negativa si
// salidas retroactivas o ediciones administrativas dejaron el historial inconsistente.
func SignedTotal(movements []entity.Movement) int64 {
	var total int64
	for _, m := range movements {
		total += m.SignedQuantity()
	}
	return total
}

// SortMovements ordena en sitio por fecha, luego creación, luego id.
func SortMovements(movements []entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		a, b := movements[i], movements[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
