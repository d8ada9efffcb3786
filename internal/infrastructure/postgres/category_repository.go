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

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías.
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (id, parent_id, name, kind, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		c.ID, nullable(c.ParentID), c.Name, string(c.Kind), c.SortOrder, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `
		SELECT id, parent_id, name, kind, sort_order, created_at, updated_at
		FROM categories WHERE id = $1`
	c, err := scanCategory(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Update actualiza nombre, orden y tipo. El tipo de una raíz se propaga a sus subcategorías.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories SET name = $2, kind = $3, sort_order = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, c.ID, c.Name, string(c.Kind), c.SortOrder, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if c.IsRoot() {
		if _, err := r.q.Exec(ctx, `UPDATE categories SET kind = $2 WHERE parent_id = $1`, c.ID, string(c.Kind)); err != nil {
			return fmt.Errorf("propagate category kind: %w", err)
		}
	}
	return nil
}

// ListAll lista raíces y subcategorías.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*entity.Category, error) {
	query := `
		SELECT id, parent_id, name, kind, sort_order, created_at, updated_at
		FROM categories ORDER BY sort_order, name, id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// CountChildren cuenta las subcategorías de una raíz.
func (r *CategoryRepo) CountChildren(ctx context.Context, parentID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM categories WHERE parent_id = $1`, parentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// Delete elimina una categoría por ID.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	var parentID *string
	var kind string
	if err := row.Scan(&c.ID, &parentID, &c.Name, &kind, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID != nil {
		c.ParentID = *parentID
	}
	c.Kind = entity.CategoryKind(kind)
	return &c, nil
}
