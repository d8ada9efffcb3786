package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un item.
// InitialQuantity > 0 genera el movimiento "Ingreso inicial" con fecha ReceivedAt (hoy si falta).
type CreateItemRequest struct {
	SubcategoryID   string          `json:"subcategory_id" validate:"required"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Unit            string          `json:"unit" validate:"required"`
	Price           decimal.Decimal `json:"price"`
	Supplier        string          `json:"supplier"`
	TTNNumber       string          `json:"ttn_number"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	ReceivedAt      *Date           `json:"received_at,omitempty"`
}

// UpdateItemRequest entrada para actualizar los datos descriptivos de un item.
// Cantidad, estado y fecha de baja son derivados y no se editan aquí.
type UpdateItemRequest struct {
	SubcategoryID *string          `json:"subcategory_id"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit          *string          `json:"unit"`
	Price         *decimal.Decimal `json:"price"`
	Supplier      *string          `json:"supplier"`
	TTNNumber     *string          `json:"ttn_number"`
}

// ItemResponse salida de un item.
type ItemResponse struct {
	ID             string          `json:"id"`
	SubcategoryID  string          `json:"subcategory_id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Price          decimal.Decimal `json:"price"`
	Supplier       string          `json:"supplier"`
	TTNNumber      string          `json:"ttn_number"`
	Quantity       int64           `json:"quantity"`
	Status         string          `json:"status"`
	WrittenOffDate *Date           `json:"written_off_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// AuditEntryResponse entrada de la bitácora de un item.
type AuditEntryResponse struct {
	ID         string          `json:"id"`
	MovementID string          `json:"movement_id,omitempty"`
	Action     string          `json:"action"`
	UserID     string          `json:"user_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
