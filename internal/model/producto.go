package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a catalog item stocked at a single sede.
// Stock is mutated by the CRUD collaborators, never by the analytics core.
type Producto struct {
	ID          uint            `gorm:"primaryKey"`
	Nombre      string          `gorm:"type:varchar(50);index;not null"`
	Descripcion string          `gorm:"type:varchar(50)"`
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       float64         `gorm:"not null;default:0"`
	Unidad      string          `gorm:"type:varchar(45)"`
	Categoria   string          `gorm:"type:varchar(100)"`
	SedeID      uint            `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Sede is a physical bakery location.
type Sede struct {
	ID        uint   `gorm:"primaryKey"`
	Nombre    string `gorm:"type:varchar(45);not null"`
	Direccion string `gorm:"type:varchar(45)"`
	UsuarioID uint
}
