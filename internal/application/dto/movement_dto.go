package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
// Quantity se recibe como decimal para poder rechazar fracciones en vez de truncarlas.
type RegisterMovementRequest struct {
	ItemID   string          `json:"item_id"`
	Date     Date            `json:"date"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Notes    string          `json:"notes"`
}

// UpdateMovementRequest body para PUT /api/movements/:id (edición administrativa).
type UpdateMovementRequest struct {
	Date     *Date            `json:"date"`
	Type     *string          `json:"type"`
	Quantity *decimal.Decimal `json:"quantity"`
	Notes    *string          `json:"notes"`
}

// WriteOffRequest body para POST /api/items/:id/write-offs.
// Sin fecha, se asigna según el mes: hoy, último o primer día.
type WriteOffRequest struct {
	Month    string          `json:"month"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     *Date           `json:"date,omitempty"`
	Reason   string          `json:"reason"`
}

// QuantityCorrectionRequest body para POST /api/items/:id/quantity-corrections.
type QuantityCorrectionRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Date      Date      `json:"date"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by,omitempty"`
}

// MovementListResponse lista de movimientos de un item.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// WriteOffResponse resultado de una baja: el movimiento y el saldo del mes después de aplicarla.
type WriteOffResponse struct {
	Movement MovementResponse `json:"movement"`
	Balance  BalanceResponse  `json:"balance"`
	Quantity int64            `json:"item_quantity"`
}

// QuantityCorrectionResponse resultado de una corrección manual.
type QuantityCorrectionResponse struct {
	PreviousQuantity int64             `json:"previous_quantity"`
	Quantity         int64             `json:"quantity"`
	Movement         *MovementResponse `json:"movement,omitempty"`
}
