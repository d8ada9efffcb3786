package entity

// StockState es la decisión del motor de libro para un mes: sin etiqueta de dominio.
type StockState int

// Estados que devuelve el motor.
const (
	StateInStock StockState = iota + 1
	StateDepleted
	StateWrittenOff
)

// String implementa fmt.Stringer.
func (s StockState) String() string {
	switch s {
	case StateInStock:
		return "in_stock"
	case StateDepleted:
		return "depleted"
	case StateWrittenOff:
		return "written_off"
	}
	return "unknown"
}

// Status etiqueta de visualización de un item en un mes.
type Status string

// Etiquetas de estado.
const (
	StatusInStock    Status = "in_stock"
	StatusConsumed   Status = "consumed"
	StatusWrittenOff Status = "written_off"
)

// Valid indica si la etiqueta pertenece al conjunto cerrado.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusConsumed, StatusWrittenOff:
		return true
	}
	return false
}

// CategoryKind define cómo se etiqueta un item agotado: los materiales MO se "consumen",
// los repuestos se "dan de baja".
type CategoryKind string

// Tipos de categoría.
const (
	KindSpareParts CategoryKind = "spare_parts"
	KindMO         CategoryKind = "mo"
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (k CategoryKind) Valid() bool {
	switch k {
	case KindSpareParts, KindMO:
		return true
	}
	return false
}

// StatusFor traduce el estado del motor a la etiqueta del tipo de categoría.
func (k CategoryKind) StatusFor(state StockState) Status {
	switch state {
	case StateInStock:
		return StatusInStock
	case StateWrittenOff:
		return StatusWrittenOff
	case StateDepleted:
		if k == KindMO {
			return StatusConsumed
		}
		return StatusWrittenOff
	}
	return StatusInStock
}
