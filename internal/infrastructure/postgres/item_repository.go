package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, subcategory_id, name, unit, price, supplier, ttn_number, status, written_off_date, quantity, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo item.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SubcategoryID, item.Name, item.Unit, item.Price, item.Supplier, item.TTNNumber,
		string(item.Status), item.WrittenOffDate, item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert item: %w", domain.ErrInvalidInput)
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un item por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetForUpdate obtiene el item y bloquea su fila hasta el fin de la tx (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) getOne(ctx context.Context, query, id string) (*entity.Item, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update actualiza los datos descriptivos del item.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET subcategory_id = $2, name = $3, unit = $4, price = $5, supplier = $6,
			ttn_number = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.SubcategoryID, item.Name, item.Unit, item.Price, item.Supplier,
		item.TTNNumber, item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("update item: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLedgerCache persiste quantity, status y written_off_date.
func (r *ItemRepo) UpdateLedgerCache(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET quantity = $2, status = $3, written_off_date = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Quantity, string(item.Status), item.WrittenOffDate, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item ledger cache: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBySubcategory lista items de una subcategoría con paginación.
func (r *ItemRepo) ListBySubcategory(ctx context.Context, subcategoryID string, limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items WHERE subcategory_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	return r.list(ctx, query, subcategoryID, limit, offset)
}

// ListAll lista todos los items (base del libro mensual).
func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	return r.list(ctx, `SELECT `+itemColumns+` FROM items ORDER BY name, id`)
}

// CountBySubcategory cuenta los items de una subcategoría.
func (r *ItemRepo) CountBySubcategory(ctx context.Context, subcategoryID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM items WHERE subcategory_id = $1`, subcategoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Delete elimina el item; movements cae por ON DELETE CASCADE.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var status string
	err := row.Scan(
		&it.ID, &it.SubcategoryID, &it.Name, &it.Unit, &it.Price, &it.Supplier, &it.TTNNumber,
		&status, &it.WrittenOffDate, &it.Quantity, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Status = entity.Status(status)
	return &it, nil
}
