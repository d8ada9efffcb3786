package entity

import "time"

// MovementType tipo cerrado de movimiento de stock.
type MovementType string

// Tipos de movimiento.
const (
	MovementIncoming MovementType = "incoming"  // entrada
	MovementOutgoing MovementType = "outgoing"  // salida / consumo
	MovementTransfer MovementType = "transfer"  // reubicación, no altera el saldo
	MovementWriteOff MovementType = "write_off" // baja, resta igual que una salida
)

// MovementTypes lista todos los tipos válidos, en orden estable.
var MovementTypes = []MovementType{MovementIncoming, MovementOutgoing, MovementTransfer, MovementWriteOff}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIncoming, MovementOutgoing, MovementTransfer, MovementWriteOff:
		return true
	}
	return false
}

// Delta devuelve el signo con que el tipo afecta el saldo: +1, -1 o 0 (transfer).
func (t MovementType) Delta() int64 {
	switch t {
	case MovementIncoming:
		return 1
	case MovementOutgoing, MovementWriteOff:
		return -1
	case MovementTransfer:
		return 0
	}
	return 0
}

// IsIssue indica si el tipo cuenta como salida en el mes (outgoing o write_off).
func (t MovementType) IsIssue() bool {
	return t == MovementOutgoing || t == MovementWriteOff
}

// Movement es un hecho inmutable de stock sobre un único Item.
// Date es un día calendario; solo se comparan año y mes para el libro mensual.
type Movement struct {
	ID        string
	ItemID    string
	Date      time.Time
	Type      MovementType
	Quantity  int64 // siempre > 0; el signo lo da Type
	Notes     string
	CreatedAt time.Time
	CreatedBy string
}

// SignedQuantity devuelve la cantidad con el signo del tipo.
func (m Movement) SignedQuantity() int64 {
	return m.Type.Delta() * m.Quantity
}
