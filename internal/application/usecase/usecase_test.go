package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/application/usecase"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/infrastructure/memory"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newUseCases(t *testing.T) (*memory.Store, *usecase.CategoryUseCase, *usecase.ItemUseCase) {
	t.Helper()
	store := memory.NewStore()
	rc := inventory.NewRecalculator(func() time.Time { return fixedNow }, time.UTC, nil)
	cats := usecase.NewCategoryUseCase(store.Categories(), store.Items())
	items := usecase.NewItemUseCase(store, store.Items(), store.Categories(), store.Audit(), rc, nil)
	return store, cats, items
}

// ──────────────────────────────────────────────────────────────────────────────
// CategoryUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestCategory_SubcategoriaHeredaTipo(t *testing.T) {
	_, cats, _ := newUseCases(t)
	ctx := context.Background()

	root, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Materiales MO", Kind: "mo"})
	require.NoError(t, err)
	sub, err := cats.Create(ctx, dto.CreateCategoryRequest{ParentID: root.ID, Name: "Cables", Kind: "spare_parts"})
	require.NoError(t, err)
	assert.Equal(t, "mo", sub.Kind, "la subcategoría toma el tipo de la raíz")

	_, err = cats.Create(ctx, dto.CreateCategoryRequest{ParentID: sub.ID, Name: "Tercer nivel"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCategory_TipoPorDefectoYValidacion(t *testing.T) {
	_, cats, _ := newUseCases(t)
	ctx := context.Background()

	root, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Repuestos"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.KindSpareParts), root.Kind)

	_, err = cats.Create(ctx, dto.CreateCategoryRequest{Name: "Otra", Kind: "tools"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = cats.Create(ctx, dto.CreateCategoryRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = cats.Create(ctx, dto.CreateCategoryRequest{Name: "repuestos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCategory_CambioDeTipoSoloEnRaiz(t *testing.T) {
	_, cats, _ := newUseCases(t)
	ctx := context.Background()
	root, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Repuestos"})
	require.NoError(t, err)
	sub, err := cats.Create(ctx, dto.CreateCategoryRequest{ParentID: root.ID, Name: "Rodamientos"})
	require.NoError(t, err)

	mo := "mo"
	_, err = cats.Update(ctx, sub.ID, dto.UpdateCategoryRequest{Kind: &mo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = cats.Update(ctx, root.ID, dto.UpdateCategoryRequest{Kind: &mo})
	require.NoError(t, err)
	got, err := cats.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "mo", got.Kind)
}

func TestCategory_ArbolYBorrado(t *testing.T) {
	_, cats, items := newUseCases(t)
	ctx := context.Background()
	root, _ := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Repuestos"})
	sub, _ := cats.Create(ctx, dto.CreateCategoryRequest{ParentID: root.ID, Name: "Rodamientos"})
	empty, _ := cats.Create(ctx, dto.CreateCategoryRequest{ParentID: root.ID, Name: "Filtros"})

	tree, err := cats.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Subcategories, 2)

	_, err = items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "6204", Unit: "pza"})
	require.NoError(t, err)

	assert.ErrorIs(t, cats.Delete(ctx, root.ID), domain.ErrConflict)
	assert.ErrorIs(t, cats.Delete(ctx, sub.ID), domain.ErrConflict)
	require.NoError(t, cats.Delete(ctx, empty.ID))
	assert.ErrorIs(t, cats.Delete(ctx, empty.ID), domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ItemUseCase
// ──────────────────────────────────────────────────────────────────────────────

func newSubcategory(t *testing.T, cats *usecase.CategoryUseCase) (root, sub *dto.CategoryResponse) {
	t.Helper()
	ctx := context.Background()
	root, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Repuestos"})
	require.NoError(t, err)
	sub, err = cats.Create(ctx, dto.CreateCategoryRequest{ParentID: root.ID, Name: "Rodamientos"})
	require.NoError(t, err)
	return root, sub
}

func TestItem_CreaConIngresoInicial(t *testing.T) {
	store, cats, items := newUseCases(t)
	_, sub := newSubcategory(t, cats)
	ctx := context.Background()

	received := dto.Date{Time: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)}
	out, err := items.Create(ctx, "u-1", dto.CreateItemRequest{
		SubcategoryID:   sub.ID,
		Name:            " Rodamiento 6204 ",
		Unit:            "pza",
		Price:           decimal.RequireFromString("15.20"),
		InitialQuantity: decimal.NewFromInt(8),
		ReceivedAt:      &received,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rodamiento 6204", out.Name)
	assert.Equal(t, int64(8), out.Quantity)
	assert.Equal(t, string(entity.StatusInStock), out.Status)

	movs, err := store.Movements().ListByItem(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.NoteInitialReceipt, movs[0].Notes)
	assert.True(t, received.Time.Equal(movs[0].Date))

	history, err := items.History(ctx, out.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(entity.AuditItemCreated), history[0].Action)
}

func TestItem_SinCantidadInicialNoCreaMovimiento(t *testing.T) {
	store, cats, items := newUseCases(t)
	_, sub := newSubcategory(t, cats)

	out, err := items.Create(context.Background(), "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "Sello", Unit: "pza"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Quantity)
	assert.Equal(t, string(entity.StatusWrittenOff), out.Status, "repuesto sin saldo")

	movs, _ := store.Movements().ListByItem(context.Background(), out.ID)
	assert.Empty(t, movs)
}

func TestItem_Validaciones(t *testing.T) {
	_, cats, items := newUseCases(t)
	root, sub := newSubcategory(t, cats)
	ctx := context.Background()

	_, err := items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: root.ID, Name: "X", Unit: "pza"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se cuelga de una raíz")

	_, err = items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: "nope", Name: "X", Unit: "pza"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "X", Unit: "pza", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "X", Unit: "pza", InitialQuantity: decimal.RequireFromString("0.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestItem_CambioDeSubcategoriaRecalculaEtiqueta(t *testing.T) {
	_, cats, items := newUseCases(t)
	_, sub := newSubcategory(t, cats)
	ctx := context.Background()
	moRoot, err := cats.Create(ctx, dto.CreateCategoryRequest{Name: "Materiales", Kind: "mo"})
	require.NoError(t, err)
	moSub, err := cats.Create(ctx, dto.CreateCategoryRequest{ParentID: moRoot.ID, Name: "Cables"})
	require.NoError(t, err)

	out, err := items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "Cable", Unit: "m"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusWrittenOff), out.Status)

	out, err = items.Update(ctx, out.ID, dto.UpdateItemRequest{SubcategoryID: &moSub.ID})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusConsumed), out.Status)
}

func TestItem_BorradoConservaBitacora(t *testing.T) {
	store, cats, items := newUseCases(t)
	_, sub := newSubcategory(t, cats)
	ctx := context.Background()

	out, err := items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: "6204", Unit: "pza", InitialQuantity: decimal.NewFromInt(2)})
	require.NoError(t, err)
	require.NoError(t, items.Delete(ctx, "admin", out.ID))

	got, err := items.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	movs, _ := store.Movements().ListByItem(ctx, out.ID)
	assert.Empty(t, movs, "el historial se elimina con el item")

	history, err := items.History(ctx, out.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, string(entity.AuditItemDeleted), history[0].Action)

	assert.ErrorIs(t, items.Delete(ctx, "admin", out.ID), domain.ErrNotFound)
}

func TestItem_ListaPaginada(t *testing.T) {
	_, cats, items := newUseCases(t)
	_, sub := newSubcategory(t, cats)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := items.Create(ctx, "u-1", dto.CreateItemRequest{SubcategoryID: sub.ID, Name: name, Unit: "pza"})
		require.NoError(t, err)
	}

	page, err := items.List(ctx, sub.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Page.Total)

	page, err = items.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 3, page.Page.Total)
}
