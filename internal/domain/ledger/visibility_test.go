package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
)

func TestShouldItemBeVisible_Reglas(t *testing.T) {
	cases := []struct {
		name  string
		movs  []entity.Movement
		month string
		want  bool
	}{
		{"sin movimientos", nil, "2026-01", false},
		{"movimiento en el mes", []entity.Movement{mv(t, "10.01.2026", entity.MovementTransfer, 1)}, "2026-01", true},
		{"saldo arrastrado", []entity.Movement{mv(t, "10.12.2025", entity.MovementIncoming, 1)}, "2026-01", true},
		{"consumido antes del mes", []entity.Movement{
			mv(t, "10.12.2025", entity.MovementIncoming, 2),
			mv(t, "11.12.2025", entity.MovementOutgoing, 2),
		}, "2026-01", false},
		{"saldo negativo antes del mes", []entity.Movement{mv(t, "10.12.2025", entity.MovementOutgoing, 2)}, "2026-01", false},
		{"solo movimientos futuros", []entity.Movement{mv(t, "10.02.2026", entity.MovementIncoming, 2)}, "2026-01", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.ShouldItemBeVisible(tc.movs, month(tc.month)))
		})
	}
}

func TestItemStockState_SaldoAcumulado(t *testing.T) {
	movs := []entity.Movement{
		mv(t, "10.01.2026", entity.MovementIncoming, 5),
		mv(t, "10.02.2026", entity.MovementOutgoing, 5),
	}
	assert.Equal(t, entity.StateDepleted, ledger.ItemStockState(nil, movs, month("2025-12")))
	assert.Equal(t, entity.StateInStock, ledger.ItemStockState(nil, movs, month("2026-01")))
	assert.Equal(t, entity.StateDepleted, ledger.ItemStockState(nil, movs, month("2026-02")))
	assert.Equal(t, entity.StateDepleted, ledger.ItemStockState(nil, movs, month("2026-05")))
}

// Item dado de baja el 20.01.2026 que recibe 5 unidades el 05.03.2026.
func TestEscenario_BajaYReingreso(t *testing.T) {
	movs := []entity.Movement{
		mv(t, "12.01.2026", entity.MovementIncoming, 8),
		mv(t, "20.01.2026", entity.MovementWriteOff, 8),
		mv(t, "05.03.2026", entity.MovementIncoming, 5),
	}
	writtenOff := ledger.DepletionDate(movs)
	require.NotNil(t, writtenOff)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), *writtenOff)

	jan, mar := month("2026-01"), month("2026-03")
	assert.Equal(t, entity.StateWrittenOff, ledger.ItemStockState(writtenOff, movs, jan))
	assert.Equal(t, entity.StateInStock, ledger.ItemStockState(writtenOff, movs, mar))
	assert.True(t, ledger.ShouldItemBeVisible(movs, jan))
	assert.True(t, ledger.ShouldItemBeVisible(movs, mar))
	assert.False(t, ledger.ShouldItemBeVisible(movs, month("2026-02")), "febrero queda vacío")

	assert.Equal(t, entity.StatusWrittenOff, entity.KindMO.StatusFor(ledger.ItemStockState(writtenOff, movs, jan)))
	assert.Equal(t, entity.StatusInStock, entity.KindSpareParts.StatusFor(ledger.ItemStockState(writtenOff, movs, mar)))
}

func TestStatusFor_EtiquetaPorTipoDeCategoria(t *testing.T) {
	assert.Equal(t, entity.StatusConsumed, entity.KindMO.StatusFor(entity.StateDepleted))
	assert.Equal(t, entity.StatusWrittenOff, entity.KindSpareParts.StatusFor(entity.StateDepleted))
	assert.Equal(t, entity.StatusInStock, entity.KindMO.StatusFor(entity.StateInStock))
}

func TestDepletionDate_IgnoraCeroRecuperadoEnElMismoMes(t *testing.T) {
	movs := []entity.Movement{
		mv(t, "02.01.2026", entity.MovementIncoming, 3),
		mv(t, "05.01.2026", entity.MovementOutgoing, 3),
		mv(t, "25.01.2026", entity.MovementIncoming, 1),
	}
	assert.Nil(t, ledger.DepletionDate(movs), "enero cierra con 1, no hay baja que mostrar")
}

func TestDepletionDate_UltimoAgotamiento(t *testing.T) {
	movs := []entity.Movement{
		mv(t, "02.01.2026", entity.MovementIncoming, 3),
		mv(t, "05.01.2026", entity.MovementOutgoing, 3),
		mv(t, "01.04.2026", entity.MovementIncoming, 2),
		mv(t, "09.05.2026", entity.MovementWriteOff, 2),
	}
	got := ledger.DepletionDate(movs)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), *got)
	assert.Nil(t, ledger.DepletionDate(nil))
}

// Item mo agotado en enero y de nuevo en mayo: enero no cambia de etiqueta.
func TestItemStockState_SegundoAgotamientoNoReetiquetaMesesAnteriores(t *testing.T) {
	movs := []entity.Movement{
		mv(t, "02.01.2026", entity.MovementIncoming, 3),
		mv(t, "05.01.2026", entity.MovementOutgoing, 3),
		mv(t, "01.04.2026", entity.MovementIncoming, 2),
		mv(t, "09.05.2026", entity.MovementWriteOff, 2),
	}
	dates := ledger.DepletionDates(movs)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), dates[0])

	writtenOff := ledger.DepletionDate(movs)
	require.NotNil(t, writtenOff)
	assert.Equal(t, dates[1], *writtenOff)

	assert.Equal(t, entity.StateWrittenOff, ledger.ItemStockState(writtenOff, movs, month("2026-01")))
	assert.Equal(t, entity.StateDepleted, ledger.ItemStockState(writtenOff, movs, month("2026-02")))
	assert.Equal(t, entity.StateInStock, ledger.ItemStockState(writtenOff, movs, month("2026-04")))
	assert.Equal(t, entity.StateWrittenOff, ledger.ItemStockState(writtenOff, movs, month("2026-05")))
	assert.Equal(t, entity.StatusWrittenOff, entity.KindMO.StatusFor(ledger.ItemStockState(writtenOff, movs, month("2026-01"))))
}
