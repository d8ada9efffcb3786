package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maestral4ik/warehouse1/internal/application/dto"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/ledger"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
	"github.com/maestral4ik/warehouse1/pkg/logger"
)

// ReportUseCase reconstruye el libro mensual a partir de los historiales.
// Solo lectura: no toma bloqueos.
type ReportUseCase struct {
	categories repository.CategoryRepository
	items      repository.ItemRepository
	movements  repository.MovementRepository
	log        *logger.Logger
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	log *logger.Logger,
) *ReportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{
		categories: categories,
		items:      items,
		movements:  movements,
		log:        log.WithComponent("reports"),
	}
}

// ItemLedger saldo y estado de un item en el mes indicado (YYYY-MM).
func (uc *ReportUseCase) ItemLedger(ctx context.Context, itemID, monthStr string) (*dto.ItemLedgerResponse, error) {
	month, err := ledger.ParseMonth(monthStr)
	if err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	kind, err := uc.kindOf(ctx, item.SubcategoryID)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movements.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ItemLedgerResponse{
		Month: month.String(),
		Row:   ledgerRow(item, kind, movs, month),
	}, nil
}

// MonthlyReport libro del mes agrupado por categoría y subcategoría.
// Las subcategorías aparecen aunque no tengan items visibles en el mes.
func (uc *ReportUseCase) MonthlyReport(ctx context.Context, monthStr string) (*dto.MonthlyReportResponse, error) {
	month, err := ledger.ParseMonth(monthStr)
	if err != nil {
		return nil, err
	}
	started := time.Now()

	cats, err := uc.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	items, err := uc.items.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	bySub := make(map[string][]*entity.Item)
	for _, it := range items {
		ids = append(ids, it.ID)
		bySub[it.SubcategoryID] = append(bySub[it.SubcategoryID], it)
	}
	history, err := uc.movements.ListByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	roots := make([]*entity.Category, 0)
	children := make(map[string][]*entity.Category)
	for _, c := range cats {
		if c.IsRoot() {
			roots = append(roots, c)
			continue
		}
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	out := &dto.MonthlyReportResponse{Month: month.String(), Categories: make([]dto.CategoryReport, 0, len(roots))}
	visible := 0
	for _, root := range roots {
		cr := dto.CategoryReport{
			ID:            root.ID,
			Name:          root.Name,
			Kind:          string(root.Kind),
			Subcategories: make([]dto.SubcategoryReport, 0, len(children[root.ID])),
		}
		for _, sub := range children[root.ID] {
			sr := dto.SubcategoryReport{
				ID:     sub.ID,
				Name:   sub.Name,
				Items:  make([]dto.LedgerRow, 0),
				Totals: dto.ReportTotals{EndingValue: decimal.Zero},
			}
			for _, it := range bySub[sub.ID] {
				movs := history[it.ID]
				if !ledger.ShouldItemBeVisible(movs, month) {
					continue
				}
				row := ledgerRow(it, root.Kind, movs, month)
				sr.Items = append(sr.Items, row)
				sr.Totals.Opening += row.Balance.Opening
				sr.Totals.Incoming += row.Balance.Incoming
				sr.Totals.Issued += row.Balance.Issued
				sr.Totals.Ending += row.Balance.Ending
				sr.Totals.EndingValue = sr.Totals.EndingValue.Add(row.EndingValue)
			}
			visible += len(sr.Items)
			cr.Subcategories = append(cr.Subcategories, sr)
		}
		out.Categories = append(out.Categories, cr)
	}

	uc.log.Debug().
		Str("month", month.String()).
		Int("items", len(items)).
		Int("visible", visible).
		Dur("took", time.Since(started)).
		Msg("libro mensual reconstruido")
	return out, nil
}

func (uc *ReportUseCase) kindOf(ctx context.Context, subcategoryID string) (entity.CategoryKind, error) {
	return RootKind(ctx, Repos{Categories: uc.categories}, subcategoryID)
}

func ledgerRow(item *entity.Item, kind entity.CategoryKind, movs []entity.Movement, month ledger.Month) dto.LedgerRow {
	b := ledger.ComputeMonthlyBalance(movs, month)
	state := ledger.ItemStockState(item.WrittenOffDate, movs, month)
	row := dto.LedgerRow{
		ItemID:      item.ID,
		Name:        item.Name,
		Unit:        item.Unit,
		Price:       item.Price,
		Supplier:    item.Supplier,
		TTNNumber:   item.TTNNumber,
		Balance:     ToBalanceResponse(b),
		EndingValue: item.Price.Mul(decimal.NewFromInt(b.Ending)),
		Status:      string(kind.StatusFor(state)),
		Visible:     ledger.ShouldItemBeVisible(movs, month),
	}
	if state == entity.StateWrittenOff {
		row.WrittenOffDate = dto.NewDate(item.WrittenOffDate)
	}
	return row
}
