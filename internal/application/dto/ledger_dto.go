package dto

import "github.com/shopspring/decimal"

// BalanceResponse saldo mensual de un item.
type BalanceResponse struct {
	Opening  int64 `json:"opening"`
	Incoming int64 `json:"incoming"`
	Issued   int64 `json:"issued"`
	Ending   int64 `json:"ending"`
}

// LedgerRow fila del libro mensual para un item.
type LedgerRow struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Price          decimal.Decimal `json:"price"`
	Supplier       string          `json:"supplier"`
	TTNNumber      string          `json:"ttn_number"`
	Balance        BalanceResponse `json:"balance"`
	EndingValue    decimal.Decimal `json:"ending_value"` // Price * Ending
	Status         string          `json:"status"`
	Visible        bool            `json:"visible"`
	WrittenOffDate *Date           `json:"written_off_date,omitempty"`
}

// ItemLedgerResponse salida de GET /api/items/:id/ledger.
type ItemLedgerResponse struct {
	Month string    `json:"month"`
	Row   LedgerRow `json:"row"`
}

// ReportTotals totales de una subcategoría en el mes.
type ReportTotals struct {
	Opening     int64           `json:"opening"`
	Incoming    int64           `json:"incoming"`
	Issued      int64           `json:"issued"`
	Ending      int64           `json:"ending"`
	EndingValue decimal.Decimal `json:"ending_value"`
}

// SubcategoryReport subcategoría con sus items visibles. Siempre presente aunque esté vacía.
type SubcategoryReport struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Items  []LedgerRow  `json:"items"`
	Totals ReportTotals `json:"totals"`
}

// CategoryReport categoría raíz con sus subcategorías.
type CategoryReport struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Kind          string              `json:"kind"`
	Subcategories []SubcategoryReport `json:"subcategories"`
}

// MonthlyReportResponse salida de GET /api/reports/monthly.
type MonthlyReportResponse struct {
	Month      string           `json:"month"`
	Categories []CategoryReport `json:"categories"`
}
