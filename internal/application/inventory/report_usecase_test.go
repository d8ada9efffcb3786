package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
)

func TestMonthlyReport_SoloItemsVisiblesYSubcategoriasVacias(t *testing.T) {
	f := newFixture(t, entity.KindMO, nil)
	ctx := context.Background()
	empty := &entity.Category{ID: "sub-2", ParentID: f.root.ID, Name: "Filtros", Kind: entity.KindMO}
	require.NoError(t, f.store.Categories().Create(ctx, empty))

	f.newItem(t, "a", fixedNow)
	f.newItem(t, "b", fixedNow)
	f.newItem(t, "c", fixedNow)
	f.register(t, "a", "05.01.2026", entity.MovementIncoming, 5)
	f.register(t, "a", "02.02.2026", entity.MovementOutgoing, 5)
	f.register(t, "b", "10.01.2026", entity.MovementIncoming, 3)
	// c sin movimientos: nunca visible

	feb, err := f.reports.MonthlyReport(ctx, "2026-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-02", feb.Month)
	require.Len(t, feb.Categories, 1)
	subs := feb.Categories[0].Subcategories
	require.Len(t, subs, 2, "las subcategorías vacías también se listan")

	rod, filters := subs[0], subs[1]
	if rod.ID != f.sub.ID {
		rod, filters = filters, rod
	}
	assert.Empty(t, filters.Items)
	require.Len(t, rod.Items, 2)
	assert.Equal(t, int64(8), rod.Totals.Opening)
	assert.Equal(t, int64(5), rod.Totals.Issued)
	assert.Equal(t, int64(3), rod.Totals.Ending)
	assert.True(t, decimal.RequireFromString("37.50").Equal(rod.Totals.EndingValue))

	mar, err := f.reports.MonthlyReport(ctx, "2026-03")
	require.NoError(t, err)
	for _, s := range mar.Categories[0].Subcategories {
		if s.ID == f.sub.ID {
			require.Len(t, s.Items, 1, "a quedó en cero en febrero")
			assert.Equal(t, "b", s.Items[0].ItemID)
		}
	}
}

func TestItemLedger_EtiquetasPorMes(t *testing.T) {
	f := newFixture(t, entity.KindMO, nil)
	ctx := context.Background()
	f.newItem(t, "a", fixedNow)
	f.register(t, "a", "05.01.2026", entity.MovementIncoming, 5)
	f.register(t, "a", "02.02.2026", entity.MovementOutgoing, 5)

	jan, err := f.reports.ItemLedger(ctx, "a", "2026-01")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusInStock), jan.Row.Status)
	assert.Equal(t, int64(5), jan.Row.Balance.Ending)
	assert.Nil(t, jan.Row.WrittenOffDate)

	feb, err := f.reports.ItemLedger(ctx, "a", "2026-02")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusWrittenOff), feb.Row.Status)
	require.NotNil(t, feb.Row.WrittenOffDate)
	assert.True(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC).Equal(feb.Row.WrittenOffDate.Time))
	assert.True(t, feb.Row.Visible)

	mar, err := f.reports.ItemLedger(ctx, "a", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusConsumed), mar.Row.Status)
	assert.False(t, mar.Row.Visible)
	assert.Nil(t, mar.Row.WrittenOffDate)
}

func TestItemLedger_Errores(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "a", fixedNow)

	_, err := f.reports.ItemLedger(context.Background(), "a", "2026/01")
	assert.ErrorIs(t, err, domain.ErrInvalidMonthFormat)

	_, err = f.reports.ItemLedger(context.Background(), "nope", "2026-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.reports.MonthlyReport(context.Background(), "2026-00")
	assert.ErrorIs(t, err, domain.ErrInvalidMonthFormat)
}
