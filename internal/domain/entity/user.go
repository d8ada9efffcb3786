package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleAuditor   = "auditor" // solo lectura
)

// Estados de usuario.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// ValidRole indica si el rol es uno de los conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBodeguero, RoleAuditor:
		return true
	}
	return false
}

// User representa un usuario del almacén.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
