package model

// Roles de usuario.
const (
	RolAdmin   = "admin"
	RolUsuario = "usuario"
)

// Usuario stores system users with role-based access.
// Rol: "admin" | "usuario"
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(45);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null;default:'usuario'"`

	Sedes []Sede `gorm:"many2many:usuario_sedes;"`
}

// EsAdmin reports whether the user has elevated permissions.
func (u Usuario) EsAdmin() bool { return u.Rol == RolAdmin }
