package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/maestral4ik/warehouse1/internal/domain"
)

// ParseQuantity convierte una cantidad recibida como decimal a unidades enteras.
// Rechaza fracciones y valores <= 0 (o < 0 si allowZero).
func ParseQuantity(d decimal.Decimal, allowZero bool) (int64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %s no es entero", domain.ErrInvalidQuantity, d)
	}
	if d.IsNegative() || (!allowZero && d.IsZero()) {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, d)
	}
	if !d.LessThanOrEqual(decimal.NewFromInt(maxQuantity)) {
		return 0, fmt.Errorf("%w: %s fuera de rango", domain.ErrInvalidQuantity, d)
	}
	return d.IntPart(), nil
}

// maxQuantity tope por movimiento; deja margen para sumar historiales sin desbordar int64.
const maxQuantity = 1_000_000_000
