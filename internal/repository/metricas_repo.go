package repository

import (
	"context"
	"time"

	"panaderia/internal/model"

	"gorm.io/gorm"
)

// MovimientoFilter defines filters for range queries over the movement ledger.
// Nil / zero fields are not applied.
type MovimientoFilter struct {
	Tipo       string
	ProductoID *uint
	SedeID     *uint
	Desde      *time.Time
	Hasta      *time.Time
	// Recientes orders by fecha DESC instead of the default encounter order (fecha ASC, id ASC).
	Recientes bool
	Limit     int
}

// MetricasRepository is the read-only accessor the analytics core consumes.
// It never writes; stock and readings are maintained by the CRUD collaborators.
type MetricasRepository interface {
	ListMovimientos(ctx context.Context, filter MovimientoFilter) ([]model.Movimiento, error)
	ListProductos(ctx context.Context) ([]model.Producto, error)
	ListProductosStockBajo(ctx context.Context, umbral float64) ([]model.Producto, error)
	FindProductoByID(ctx context.Context, id uint) (*model.Producto, error)
	ListSedes(ctx context.Context) ([]model.Sede, error)
	UltimasTemperaturas(ctx context.Context, n int) ([]model.Temperatura, error)
	UltimasHumedades(ctx context.Context, n int) ([]model.Humedad, error)
}

type metricasRepo struct{ db *gorm.DB }

func NewMetricasRepository(db *gorm.DB) MetricasRepository {
	return &metricasRepo{db: db}
}

func (r *metricasRepo) ListMovimientos(ctx context.Context, filter MovimientoFilter) ([]model.Movimiento, error) {
	q := r.db.WithContext(ctx).Model(&model.Movimiento{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.SedeID != nil {
		q = q.Where("sede_id = ?", *filter.SedeID)
	}
	if filter.Desde != nil {
		q = q.Where("fecha >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("fecha <= ?", *filter.Hasta)
	}
	if filter.Recientes {
		q = q.Order("fecha DESC").Order("id DESC")
	} else {
		q = q.Order("fecha ASC").Order("id ASC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var movimientos []model.Movimiento
	err := q.Find(&movimientos).Error
	return movimientos, err
}

func (r *metricasRepo) ListProductos(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Order("id ASC").Find(&productos).Error
	return productos, err
}

func (r *metricasRepo) ListProductosStockBajo(ctx context.Context, umbral float64) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("stock < ?", umbral).Order("id ASC").Find(&productos).Error
	return productos, err
}

func (r *metricasRepo) FindProductoByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *metricasRepo) ListSedes(ctx context.Context) ([]model.Sede, error) {
	var sedes []model.Sede
	err := r.db.WithContext(ctx).Order("id ASC").Find(&sedes).Error
	return sedes, err
}

func (r *metricasRepo) UltimasTemperaturas(ctx context.Context, n int) ([]model.Temperatura, error) {
	var lecturas []model.Temperatura
	err := r.db.WithContext(ctx).Order("fecha DESC").Order("id DESC").Limit(n).Find(&lecturas).Error
	return lecturas, err
}

func (r *metricasRepo) UltimasHumedades(ctx context.Context, n int) ([]model.Humedad, error) {
	var lecturas []model.Humedad
	err := r.db.WithContext(ctx).Order("fecha DESC").Order("id DESC").Limit(n).Find(&lecturas).Error
	return lecturas, err
}
