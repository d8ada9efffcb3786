package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

// "Hoy" fijo para todos los tests: 14.10.2026.
var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	rc      *inventory.Recalculator
	uc      *inventory.MovementUseCase
	reports *inventory.ReportUseCase
	root    *entity.Category
	sub     *entity.Category
}

func newFixture(t *testing.T, kind entity.CategoryKind, pub inventory.EventPublisher) *fixture {
	t.Helper()
	store := memory.NewStore()
	rc := inventory.NewRecalculator(func() time.Time { return fixedNow }, time.UTC, nil)
	f := &fixture{
		store:   store,
		rc:      rc,
		uc:      inventory.NewMovementUseCase(store, store.Items(), store.Movements(), pub, rc, nil),
		reports: inventory.NewReportUseCase(store.Categories(), store.Items(), store.Movements(), nil),
		root:    &entity.Category{ID: "root-1", Name: "Repuestos", Kind: kind},
		sub:     &entity.Category{ID: "sub-1", ParentID: "root-1", Name: "Rodamientos", Kind: kind},
	}
	ctx := context.Background()
	require.NoError(t, store.Categories().Create(ctx, f.root))
	require.NoError(t, store.Categories().Create(ctx, f.sub))
	return f
}

func (f *fixture) newItem(t *testing.T, id string, createdAt time.Time) *entity.Item {
	t.Helper()
	item := &entity.Item{
		ID:            id,
		SubcategoryID: f.sub.ID,
		Name:          "Rodamiento " + id,
		Unit:          "pza",
		Price:         decimal.RequireFromString("12.50"),
		Status:        entity.StatusInStock,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), item))
	return item
}

func (f *fixture) register(t *testing.T, itemID, date string, typ entity.MovementType, qty int64) string {
	t.Helper()
	d, err := time.Parse("02.01.2006", date)
	require.NoError(t, err)
	out, err := f.uc.RegisterMovement(context.Background(), inventory.MovementInput{
		UserID:   "u-1",
		ItemID:   itemID,
		Date:     d,
		Type:     string(typ),
		Quantity: decimal.NewFromInt(qty),
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) item(t *testing.T, id string) *entity.Item {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it
}

// assertCacheConsistent la cantidad guardada coincide con la recalculada desde el historial.
func (f *fixture) assertCacheConsistent(t *testing.T, id string) {
	t.Helper()
	movs, err := f.store.Movements().ListByItem(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, ledger.RecalculateCurrentQuantity(movs), f.item(t, id).Quantity)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev inventory.MovementEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_ActualizaCantidad(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)

	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)
	f.register(t, "it-1", "20.01.2026", entity.MovementTransfer, 4)
	f.register(t, "it-1", "03.02.2026", entity.MovementOutgoing, 3)

	assert.Equal(t, int64(7), f.item(t, "it-1").Quantity)
	assert.Equal(t, entity.StatusInStock, f.item(t, "it-1").Status)
	f.assertCacheConsistent(t, "it-1")
}

func TestRegisterMovement_SalidaSuperaDisponible(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	_, err := f.uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ItemID: "it-1", Date: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC),
		Type: string(entity.MovementOutgoing), Quantity: decimal.NewFromInt(11),
	})
	require.Error(t, err)
	se, ok := domain.AsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, int64(10), se.Available)

	movs, _ := f.store.Movements().ListByItem(context.Background(), "it-1")
	assert.Len(t, movs, 1, "el rechazo no debe persistir nada")
	assert.Equal(t, int64(10), f.item(t, "it-1").Quantity)
}

func TestRegisterMovement_EntradasInvalidas(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   inventory.MovementInput
		want error
	}{
		{"tipo desconocido", inventory.MovementInput{ItemID: "it-1", Date: date, Type: "gift", Quantity: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"sin fecha", inventory.MovementInput{ItemID: "it-1", Type: "incoming", Quantity: decimal.NewFromInt(1)}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.MovementInput{ItemID: "it-1", Date: date, Type: "incoming", Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"cantidad fraccionaria", inventory.MovementInput{ItemID: "it-1", Date: date, Type: "incoming", Quantity: decimal.RequireFromString("1.5")}, domain.ErrInvalidQuantity},
		{"item inexistente", inventory.MovementInput{ItemID: "nope", Date: date, Type: "incoming", Quantity: decimal.NewFromInt(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RegisterMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegisterMovement_PublicaDespuesDelCommit(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(ev inventory.MovementEvent) bool {
		return ev.ItemID == "it-1" && ev.Action == inventory.EventMovementCreated && ev.Quantity == 4 && ev.ItemQty == 4
	})).Return(nil).Once()

	f := newFixture(t, entity.KindSpareParts, pub)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 4)

	pub.AssertExpectations(t)
}

func TestRegisterMovement_FalloDelPublisherNoRevierte(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker caído"))

	f := newFixture(t, entity.KindSpareParts, pub)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 4)

	assert.Equal(t, int64(4), f.item(t, "it-1").Quantity)
}

func TestRegisterMovement_EscribeBitacora(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	id := f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 4)

	entries, err := f.store.Audit().ListByItem(context.Background(), "it-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditMovementCreated, entries[0].Action)
	assert.Equal(t, id, entries[0].MovementID)
	assert.Equal(t, "u-1", entries[0].UserID)
}

// ──────────────────────────────────────────────────────────────────────────────
// WriteOff
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteOff_RechazaMasDeLoDisponible(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	_, err := f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
		ItemID: "it-1", Month: "2026-02", Quantity: decimal.NewFromInt(11),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	movs, _ := f.store.Movements().ListByItem(context.Background(), "it-1")
	assert.Len(t, movs, 1)
	entries, _ := f.store.Audit().ListByItem(context.Background(), "it-1", 10, 0)
	assert.Len(t, entries, 1, "solo la bitácora del ingreso")
}

func TestWriteOff_MesPasadoUsaUltimoDia(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	out, err := f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
		UserID: "u-1", ItemID: "it-1", Month: "2026-02", Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	feb28 := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	assert.True(t, feb28.Equal(out.Movement.Date.Time))
	assert.Equal(t, string(entity.MovementWriteOff), out.Movement.Type)
	assert.Equal(t, inventory.NoteWriteOff, out.Movement.Notes)
	assert.Equal(t, int64(10), out.Balance.Opening)
	assert.Equal(t, int64(10), out.Balance.Issued)
	assert.Equal(t, int64(0), out.Balance.Ending)
	assert.Equal(t, int64(0), out.Quantity)

	it := f.item(t, "it-1")
	assert.Equal(t, entity.StatusWrittenOff, it.Status)
	require.NotNil(t, it.WrittenOffDate)
	assert.True(t, feb28.Equal(*it.WrittenOffDate))
	f.assertCacheConsistent(t, "it-1")
}

func TestWriteOff_MesActualUsaHoy(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "01.10.2026", entity.MovementIncoming, 5)

	out, err := f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
		ItemID: "it-1", Month: "2026-10", Quantity: decimal.NewFromInt(2), Reason: "dañado",
	})
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC).Equal(out.Movement.Date.Time))
	assert.Equal(t, "dañado", out.Movement.Notes)
	assert.Equal(t, int64(3), out.Quantity)
}

func TestWriteOff_FechaExplicitaFueraDelMes(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 5)

	d := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
		ItemID: "it-1", Month: "2026-02", Quantity: decimal.NewFromInt(1), Date: &d,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWriteOff_MesInvalido(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)

	for _, m := range []string{"2026-13", "2026-1", "02.2026", ""} {
		_, err := f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
			ItemID: "it-1", Month: m, Quantity: decimal.NewFromInt(1),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidMonthFormat, "mes %q", m)
	}
}

// Dos bajas concurrentes de 6 sobre 10 unidades: solo una puede pasar.
func TestWriteOff_ConcurrenciaNoSobregira(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.WriteOff(context.Background(), inventory.WriteOffInput{
				ItemID: "it-1", Month: "2026-02", Quantity: decimal.NewFromInt(6),
			})
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, int64(4), f.item(t, "it-1").Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update / Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateMovement_RecalculaSinControlDeStock(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	in := f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)
	f.register(t, "it-1", "20.01.2026", entity.MovementOutgoing, 8)

	qty := decimal.NewFromInt(5)
	out, err := f.uc.UpdateMovement(context.Background(), inventory.UpdateMovementInput{
		UserID: "admin", MovementID: in, Quantity: &qty,
	})
	require.NoError(t, err, "la edición administrativa puede dejar saldo negativo")
	assert.Equal(t, int64(5), out.Quantity)
	assert.Equal(t, int64(0), f.item(t, "it-1").Quantity, "la cantidad se acota a cero")
	f.assertCacheConsistent(t, "it-1")
}

func TestUpdateMovement_TipoInvalidoNoPersiste(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	id := f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	bad := "gift"
	_, err := f.uc.UpdateMovement(context.Background(), inventory.UpdateMovementInput{MovementID: id, Type: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	m, err := f.store.Movements().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementIncoming, m.Type)
}

func TestDeleteMovement_RecalculaYAudita(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)
	out := f.register(t, "it-1", "20.01.2026", entity.MovementOutgoing, 10)
	assert.Equal(t, entity.StatusWrittenOff, f.item(t, "it-1").Status)

	require.NoError(t, f.uc.DeleteMovement(context.Background(), "admin", out))

	it := f.item(t, "it-1")
	assert.Equal(t, int64(10), it.Quantity)
	assert.Equal(t, entity.StatusInStock, it.Status)
	assert.Nil(t, it.WrittenOffDate)

	entries, _ := f.store.Audit().ListByItem(context.Background(), "it-1", 1, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.AuditMovementDeleted, entries[0].Action)

	assert.ErrorIs(t, f.uc.DeleteMovement(context.Background(), "admin", out), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CorrectQuantity
// ──────────────────────────────────────────────────────────────────────────────

func TestCorrectQuantity_SinHistorialCreaIngresoInicial(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC))

	out, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		UserID: "admin", ItemID: "it-1", NewQuantity: decimal.NewFromInt(7),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.PreviousQuantity)
	require.NotNil(t, out.Movement)
	assert.Equal(t, inventory.NoteInitialReceipt, out.Movement.Notes)
	assert.Equal(t, string(entity.MovementIncoming), out.Movement.Type)
	assert.True(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Equal(out.Movement.Date.Time))
	assert.Equal(t, int64(7), f.item(t, "it-1").Quantity)
}

func TestCorrectQuantity_ConHistorialCompensaHoy(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	out, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.NewFromInt(7), Reason: "inventario físico",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Movement)
	assert.Equal(t, string(entity.MovementOutgoing), out.Movement.Type)
	assert.Equal(t, int64(3), out.Movement.Quantity)
	assert.Equal(t, inventory.NoteQuantityCorrection+": inventario físico", out.Movement.Notes)
	assert.True(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC).Equal(out.Movement.Date.Time))

	out, err = f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MovementIncoming), out.Movement.Type)
	assert.Equal(t, int64(5), out.Movement.Quantity)
	assert.Equal(t, inventory.NoteQuantityCorrection, out.Movement.Notes)
	assert.Equal(t, int64(12), f.item(t, "it-1").Quantity)
	f.assertCacheConsistent(t, "it-1")
}

func TestCorrectQuantity_HistorialNegativoAlcanzaElObjetivo(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)
	f.register(t, "it-1", "03.02.2026", entity.MovementOutgoing, 10)
	// Salida retroactiva: enero todavía tiene 10 disponibles, el total con signo queda en -5.
	f.register(t, "it-1", "20.01.2026", entity.MovementOutgoing, 5)
	require.Equal(t, int64(0), f.item(t, "it-1").Quantity)

	out, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.PreviousQuantity)
	assert.Equal(t, int64(5), out.Quantity)
	require.NotNil(t, out.Movement)
	assert.Equal(t, string(entity.MovementIncoming), out.Movement.Type)
	assert.Equal(t, int64(10), out.Movement.Quantity)
	assert.Equal(t, int64(5), f.item(t, "it-1").Quantity)
	f.assertCacheConsistent(t, "it-1")
}

func TestCorrectQuantity_HistorialNegativoACeroNoCreaMovimiento(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)
	f.register(t, "it-1", "03.02.2026", entity.MovementOutgoing, 10)
	f.register(t, "it-1", "20.01.2026", entity.MovementOutgoing, 5)

	out, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.Zero,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Movement)
	assert.Equal(t, int64(0), f.item(t, "it-1").Quantity)
}

func TestCorrectQuantity_SinCambioNoCreaMovimiento(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	out, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Nil(t, out.Movement)
	movs, _ := f.store.Movements().ListByItem(context.Background(), "it-1")
	assert.Len(t, movs, 1)
}

func TestCorrectQuantity_RechazaNegativos(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	f.newItem(t, "it-1", fixedNow)
	_, err := f.uc.CorrectQuantity(context.Background(), inventory.CorrectionInput{
		ItemID: "it-1", NewQuantity: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecalculateItem
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculateItem_CorrigeCacheDesincronizada(t *testing.T) {
	f := newFixture(t, entity.KindSpareParts, nil)
	it := f.newItem(t, "it-1", fixedNow)
	f.register(t, "it-1", "15.01.2026", entity.MovementIncoming, 10)

	it.Quantity = 99
	require.NoError(t, f.store.Items().UpdateLedgerCache(context.Background(), it))

	changed, err := f.uc.RecalculateItem(context.Background(), "it-1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int64(10), f.item(t, "it-1").Quantity)

	changed, err = f.uc.RecalculateItem(context.Background(), "it-1")
	require.NoError(t, err)
	assert.False(t, changed, "recalcular dos veces no cambia nada")
}
