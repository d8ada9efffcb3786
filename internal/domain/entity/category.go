package entity

import "time"

// Category representa una categoría o subcategoría de almacén (dos niveles).
// Kind solo es significativo en la raíz; las subcategorías lo heredan.
type Category struct {
	ID        string
	ParentID  string // vacío si es raíz
	Name      string
	Kind      CategoryKind
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot indica si la categoría es de primer nivel.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}
