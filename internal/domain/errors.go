package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidMonthFormat = errors.New("formato de mes inválido, se espera YYYY-MM")
	ErrInvalidQuantity    = errors.New("cantidad inválida, debe ser un entero positivo")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// InsufficientStockError rechazo de una baja que supera lo disponible en el mes.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: solicitado %d, disponible %d", ErrInsufficientStock.Error(), e.Requested, e.Available)
}

// Is permite errors.Is contra ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// AsInsufficientStock extrae el detalle de stock de la cadena de errores.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var se *InsufficientStockError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
