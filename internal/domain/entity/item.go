package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa una posición de almacén (repuesto o material MO) dentro de una subcategoría.
// Quantity, Status y WrittenOffDate son caché derivada de los movimientos; solo el recálculo
// del libro los escribe.
type Item struct {
	ID             string
	SubcategoryID  string
	Name           string
	Unit           string
	Price          decimal.Decimal
	Supplier       string
	TTNNumber      string // número de guía de remisión (ТТН)
	Status         Status
	WrittenOffDate *time.Time
	Quantity       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
