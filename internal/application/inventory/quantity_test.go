package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/domain"
)

func TestParseQuantity(t *testing.T) {
	q, err := inventory.ParseQuantity(decimal.RequireFromString("42"), false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), q)

	q, err = inventory.ParseQuantity(decimal.RequireFromString("3.000"), false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), q, "3.000 es entero")

	q, err = inventory.ParseQuantity(decimal.Zero, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q)

	for _, raw := range []string{"0", "-1", "2.5", "1000000001"} {
		_, err := inventory.ParseQuantity(decimal.RequireFromString(raw), false)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, raw)
	}
}
