package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementsTable = "movements"

var movementColumns = []string{"id", "item_id", "date", "type", "quantity", "notes", "created_at", "created_by"}

// orden cronológico estable del historial
var movementOrder = []string{"date", "created_at", "id"}

// MovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q       Querier
	builder squirrel.StatementBuilderType
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{
		q:       q,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type movementRow struct {
	ID        string    `db:"id"`
	ItemID    string    `db:"item_id"`
	Date      time.Time `db:"date"`
	Type      string    `db:"type"`
	Quantity  int64     `db:"quantity"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	CreatedBy *string   `db:"created_by"`
}

func (m movementRow) toEntity() entity.Movement {
	out := entity.Movement{
		ID:        m.ID,
		ItemID:    m.ItemID,
		Date:      m.Date,
		Type:      entity.MovementType(m.Type),
		Quantity:  m.Quantity,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
	if m.CreatedBy != nil {
		out.CreatedBy = *m.CreatedBy
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sql, args, err := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(m.ID, m.ItemID, m.Date, string(m.Type), m.Quantity, m.Notes, m.CreatedAt, nullable(m.CreatedBy)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert movement: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	sql, args, err := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	m := row.toEntity()
	return &m, nil
}

// Update reescribe fecha, tipo, cantidad y notas del movimiento.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	sql, args, err := r.builder.Update(movementsTable).
		Set("date", m.Date).
		Set("type", string(m.Type)).
		Set("quantity", m.Quantity).
		Set("notes", m.Notes).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un movimiento por ID.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	sql, args, err := r.builder.Delete(movementsTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByItem historial completo del item en orden cronológico.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string) ([]entity.Movement, error) {
	return r.selectMovements(ctx, r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy(movementOrder...))
}

// ListByItems historiales de varios items en una sola consulta.
func (r *MovementRepo) ListByItems(ctx context.Context, itemIDs []string) (map[string][]entity.Movement, error) {
	out := make(map[string][]entity.Movement, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	// squirrel.Eq con slice genera item_id IN (...)
	list, err := r.selectMovements(ctx, r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"item_id": itemIDs}).
		OrderBy(append([]string{"item_id"}, movementOrder...)...))
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		out[m.ItemID] = append(out[m.ItemID], m)
	}
	return out, nil
}

// Search movimientos del item con filtros de fecha, tipo y paginación.
func (r *MovementRepo) Search(ctx context.Context, itemID string, f repository.MovementFilter) ([]entity.Movement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID})
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.To})
	}
	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, string(t))
		}
		q = q.Where(squirrel.Eq{"type": types})
	}
	q = q.OrderBy(movementOrder...)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return r.selectMovements(ctx, q)
}

func (r *MovementRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]entity.Movement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
