package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento admitidos. El conjunto es cerrado.
const (
	MovimientoVenta            = "venta"
	MovimientoReabastecimiento = "reabastecimiento"
	MovimientoAjuste           = "ajuste"
	MovimientoAgregado         = "agregado"
	MovimientoEntrada          = "entrada"
)

// TiposMovimiento lists every movement kind in a fixed order.
var TiposMovimiento = []string{
	MovimientoVenta,
	MovimientoReabastecimiento,
	MovimientoAjuste,
	MovimientoAgregado,
	MovimientoEntrada,
}

// Movimiento registra una transacción de inventario en una sede.
// El ledger es append-mostly: las correcciones se hacen con un movimiento nuevo.
type Movimiento struct {
	ID         uint            `gorm:"primaryKey"`
	ProductoID uint            `gorm:"not null;index"`
	SedeID     uint            `gorm:"not null;index"`
	UsuarioID  uint            `gorm:"index"`
	Cantidad   float64         `gorm:"not null"`
	Precio     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Tipo       string          `gorm:"type:varchar(20);not null;index"`
	Fecha      time.Time       `gorm:"not null;index"`
}

// Ingreso returns cantidad × precio.
func (m Movimiento) Ingreso() decimal.Decimal {
	return decimal.NewFromFloat(m.Cantidad).Mul(m.Precio)
}
