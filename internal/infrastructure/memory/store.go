// Package memory implementa los repositorios en memoria para desarrollo y tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/maestral4ik/warehouse1/internal/application/inventory"
	"github.com/maestral4ik/warehouse1/internal/domain"
	"github.com/maestral4ik/warehouse1/internal/domain/entity"
	"github.com/maestral4ik/warehouse1/internal/domain/repository"
)

// Store guarda todas las tablas en mapas. Run serializa las transacciones con un mutex global,
// equivalente a bloquear todas las filas de items a la vez.
// Rollback restaura items, movimientos y bitácora; categorías y usuarios no se escriben dentro de una tx.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	items      map[string]entity.Item
	movements  map[string]entity.Movement
	categories map[string]entity.Category
	audit      []entity.AuditEntry
	users      map[string]entity.User
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]entity.Item),
		movements:  make(map[string]entity.Movement),
		categories: make(map[string]entity.Category),
		users:      make(map[string]entity.User),
	}
}

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.AuditRepository    = (*AuditRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ inventory.TxRunner            = (*Store)(nil)
)

// Items repositorio de items.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Audit repositorio de bitácora.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Repos agrupa los repositorios para inventory.TxRunner.
func (s *Store) Repos() inventory.Repos {
	return inventory.Repos{
		Items:      s.Items(),
		Movements:  s.Movements(),
		Categories: s.Categories(),
		Audit:      s.Audit(),
	}
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	items := cloneMap(s.items)
	movements := cloneMap(s.movements)
	audit := append([]entity.AuditEntry(nil), s.audit...)
	s.mu.RUnlock()

	if err := fn(ctx, s.Repos()); err != nil {
		s.mu.Lock()
		s.items, s.movements, s.audit = items, movements, audit
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ─── Items ───────────────────────────────────────────────────────────────────

// ItemRepo implementa repository.ItemRepository.
type ItemRepo struct{ s *Store }

func copyItem(it entity.Item) *entity.Item {
	if it.WrittenOffDate != nil {
		d := *it.WrittenOffDate
		it.WrittenOffDate = &d
	}
	return &it
}

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.categories[item.SubcategoryID]; !ok {
		return domain.ErrInvalidInput
	}
	r.s.items[item.ID] = *copyItem(*item)
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(it), nil
}

// GetForUpdate en memoria equivale a GetByID: Run ya serializa a los escritores.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.items[item.ID] = *copyItem(*item)
	return nil
}

func (r *ItemRepo) UpdateLedgerCache(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Quantity = item.Quantity
	cur.Status = item.Status
	cur.WrittenOffDate = item.WrittenOffDate
	cur.UpdatedAt = item.UpdatedAt
	r.s.items[item.ID] = *copyItem(cur)
	return nil
}

func (r *ItemRepo) ListBySubcategory(_ context.Context, subcategoryID string, limit, offset int) ([]*entity.Item, error) {
	list := r.filter(func(it entity.Item) bool { return it.SubcategoryID == subcategoryID })
	if offset >= len(list) {
		return []*entity.Item{}, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *ItemRepo) ListAll(_ context.Context) ([]*entity.Item, error) {
	return r.filter(func(entity.Item) bool { return true }), nil
}

func (r *ItemRepo) CountBySubcategory(_ context.Context, subcategoryID string) (int, error) {
	return len(r.filter(func(it entity.Item) bool { return it.SubcategoryID == subcategoryID })), nil
}

// Delete elimina el item y sus movimientos.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.items, id)
	for mid, m := range r.s.movements {
		if m.ItemID == id {
			delete(r.s.movements, mid)
		}
	}
	return nil
}

func (r *ItemRepo) filter(keep func(entity.Item) bool) []*entity.Item {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Item, 0)
	for _, it := range r.s.items {
		if keep(it) {
			out = append(out, copyItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ─── Movements ───────────────────────────────────────────────────────────────

// MovementRepo implementa repository.MovementRepository.
type MovementRepo struct{ s *Store }

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[m.ItemID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.movements[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MovementRepo) Update(_ context.Context, m *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.movements[m.ID] = *m
	return nil
}

func (r *MovementRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.movements, id)
	return nil
}

func (r *MovementRepo) ListByItem(_ context.Context, itemID string) ([]entity.Movement, error) {
	return r.list(func(m entity.Movement) bool { return m.ItemID == itemID }), nil
}

func (r *MovementRepo) ListByItems(_ context.Context, itemIDs []string) (map[string][]entity.Movement, error) {
	want := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = struct{}{}
	}
	out := make(map[string][]entity.Movement, len(itemIDs))
	for _, m := range r.list(func(m entity.Movement) bool { _, ok := want[m.ItemID]; return ok }) {
		out[m.ItemID] = append(out[m.ItemID], m)
	}
	return out, nil
}

func (r *MovementRepo) Search(_ context.Context, itemID string, f repository.MovementFilter) ([]entity.Movement, error) {
	types := make(map[entity.MovementType]struct{}, len(f.Types))
	for _, t := range f.Types {
		types[t] = struct{}{}
	}
	list := r.list(func(m entity.Movement) bool {
		if m.ItemID != itemID {
			return false
		}
		if f.From != nil && m.Date.Before(*f.From) {
			return false
		}
		if f.To != nil && m.Date.After(*f.To) {
			return false
		}
		if len(types) > 0 {
			if _, ok := types[m.Type]; !ok {
				return false
			}
		}
		return true
	})
	if f.Offset >= len(list) {
		return []entity.Movement{}, nil
	}
	list = list[f.Offset:]
	if f.Limit > 0 && f.Limit < len(list) {
		list = list[:f.Limit]
	}
	return list, nil
}

func (r *MovementRepo) list(keep func(entity.Movement) bool) []entity.Movement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Movement, 0)
	for _, m := range r.s.movements {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out
}

// ─── Categories ──────────────────────────────────────────────────────────────

// CategoryRepo implementa repository.CategoryRepository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.ParentID == c.ParentID && strings.EqualFold(other.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Update persiste la categoría; al cambiar el tipo de una raíz lo propaga a sus subcategorías.
func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.categories[c.ID] = *c
	if c.IsRoot() {
		for id, child := range r.s.categories {
			if child.ParentID == c.ID {
				child.Kind = c.Kind
				r.s.categories[id] = child
			}
		}
	}
	return nil
}

func (r *CategoryRepo) ListAll(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CategoryRepo) CountChildren(_ context.Context, parentID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.categories {
		if c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.categories, id)
	return nil
}

// ─── Audit ───────────────────────────────────────────────────────────────────

// AuditRepo implementa repository.AuditRepository.
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, *e)
	return nil
}

// ListByItem devuelve la bitácora del item, más reciente primero.
func (r *AuditRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.AuditEntry, 0)
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		if e := r.s.audit[i]; e.ItemID == itemID {
			out = append(out, &e)
		}
	}
	if offset >= len(out) {
		return []*entity.AuditEntry{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// Seed inserta usuarios de arranque (solo desarrollo).
func (s *Store) Seed(users ...entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			u.CreatedAt, u.UpdatedAt = now, now
		}
		s.users[u.ID] = u
	}
}
