package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"panaderia/internal/dto"
	"panaderia/internal/model"
	"panaderia/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	TopProductosN        = 10
	UmbralStockBajo      = 10.0
	LecturasAmbientalesN = 20

	MaxDiasVentana = 365
)

// AnaliticaService computes the business snapshot consumed by the reporting
// endpoints and by the assistant context.
type AnaliticaService interface {
	CalcularSnapshot(ctx context.Context, dias int) (*dto.Snapshot, error)
}

type analiticaService struct {
	repo repository.MetricasRepository
	now  func() time.Time
}

func NewAnaliticaService(repo repository.MetricasRepository, loc *time.Location) AnaliticaService {
	return &analiticaService{
		repo: repo,
		now:  func() time.Time { return time.Now().In(loc) },
	}
}

// acumulado is one group of sale records keyed by product or location.
type acumulado struct {
	id            uint
	cantidad      float64
	ingresos      decimal.Decimal
	transacciones int
}

// CalcularSnapshot aggregates the trailing window [now-dias, now]. It has no
// side effects; any store error is returned wrapped in ErrStoreFailure.
func (s *analiticaService) CalcularSnapshot(ctx context.Context, dias int) (*dto.Snapshot, error) {
	if dias < 1 || dias > MaxDiasVentana {
		return nil, entradaInvalida("dias debe estar entre 1 y %d", MaxDiasVentana)
	}

	hasta := s.now()
	desde := hasta.AddDate(0, 0, -dias)

	movimientos, err := s.repo.ListMovimientos(ctx, repository.MovimientoFilter{Desde: &desde, Hasta: &hasta})
	if err != nil {
		return nil, storeErr("listar movimientos", err)
	}
	productos, err := s.repo.ListProductos(ctx)
	if err != nil {
		return nil, storeErr("listar productos", err)
	}
	sedes, err := s.repo.ListSedes(ctx)
	if err != nil {
		return nil, storeErr("listar sedes", err)
	}
	stockBajo, err := s.repo.ListProductosStockBajo(ctx, UmbralStockBajo)
	if err != nil {
		return nil, storeErr("listar stock bajo", err)
	}
	temperaturas, err := s.repo.UltimasTemperaturas(ctx, LecturasAmbientalesN)
	if err != nil {
		return nil, storeErr("listar temperaturas", err)
	}
	humedades, err := s.repo.UltimasHumedades(ctx, LecturasAmbientalesN)
	if err != nil {
		return nil, storeErr("listar humedades", err)
	}

	productoPorID := make(map[uint]model.Producto, len(productos))
	for _, p := range productos {
		productoPorID[p.ID] = p
	}
	sedePorID := make(map[uint]model.Sede, len(sedes))
	for _, sd := range sedes {
		sedePorID[sd.ID] = sd
	}

	ventas := make([]model.Movimiento, 0, len(movimientos))
	for _, m := range movimientos {
		if m.Tipo == model.MovimientoVenta {
			ventas = append(ventas, m)
		}
	}

	snap := &dto.Snapshot{
		PeriodoAnalisis:        fmt.Sprintf("Últimos %d días", dias),
		Dias:                   dias,
		Desde:                  desde,
		Hasta:                  hasta,
		ResumenVentas:          resumirVentas(ventas),
		ProductosTop:           topProductos(ventas, productoPorID),
		PerformanceSedes:       performanceSedes(ventas, sedePorID),
		ProductosStockBajo:     productosStockBajo(stockBajo, sedePorID),
		CondicionesAmbientales: condicionesAmbientales(temperaturas, humedades),
		TiposMovimiento:        histogramaTipos(movimientos),
		TotalProductos:         len(productos),
		TotalSedes:             len(sedes),
	}
	return snap, nil
}

func resumirVentas(ventas []model.Movimiento) dto.ResumenVentas {
	total := decimal.Zero
	for _, v := range ventas {
		total = total.Add(v.Ingreso())
	}
	return dto.ResumenVentas{
		TotalIngresos:              total.Round(2),
		TotalTransacciones:         len(ventas),
		IngresoPromedioTransaccion: promedio(total, len(ventas)),
	}
}

func promedio(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// agrupar accumulates sale records by key, preserving first-encounter order.
func agrupar(ventas []model.Movimiento, clave func(model.Movimiento) uint) []*acumulado {
	indice := make(map[uint]*acumulado)
	orden := make([]*acumulado, 0)
	for _, v := range ventas {
		id := clave(v)
		acc, ok := indice[id]
		if !ok {
			acc = &acumulado{id: id, ingresos: decimal.Zero}
			indice[id] = acc
			orden = append(orden, acc)
		}
		acc.cantidad += v.Cantidad
		acc.ingresos = acc.ingresos.Add(v.Ingreso())
		acc.transacciones++
	}
	return orden
}

func topProductos(ventas []model.Movimiento, productos map[uint]model.Producto) []dto.ProductoTop {
	grupos := agrupar(ventas, func(m model.Movimiento) uint { return m.ProductoID })
	sort.SliceStable(grupos, func(i, j int) bool {
		return grupos[i].ingresos.GreaterThan(grupos[j].ingresos)
	})
	if len(grupos) > TopProductosN {
		grupos = grupos[:TopProductosN]
	}

	top := make([]dto.ProductoTop, 0, len(grupos))
	for _, g := range grupos {
		nombre := fmt.Sprintf("Producto %d", g.id)
		categoria := "Sin categoría"
		if p, ok := productos[g.id]; ok {
			nombre = p.Nombre
			if p.Categoria != "" {
				categoria = p.Categoria
			}
		}
		top = append(top, dto.ProductoTop{
			ProductoID:      g.id,
			Nombre:          nombre,
			Categoria:       categoria,
			CantidadVendida: g.cantidad,
			Ingresos:        g.ingresos.Round(2),
		})
	}
	return top
}

func performanceSedes(ventas []model.Movimiento, sedes map[uint]model.Sede) []dto.PerformanceSede {
	grupos := agrupar(ventas, func(m model.Movimiento) uint { return m.SedeID })
	out := make([]dto.PerformanceSede, 0, len(grupos))
	for _, g := range grupos {
		out = append(out, dto.PerformanceSede{
			SedeID:          g.id,
			Nombre:          nombreSede(g.id, sedes),
			Ingresos:        g.ingresos.Round(2),
			Transacciones:   g.transacciones,
			IngresoPromedio: promedio(g.ingresos, g.transacciones),
		})
	}
	return out
}

func productosStockBajo(productos []model.Producto, sedes map[uint]model.Sede) []dto.ProductoStockBajo {
	out := make([]dto.ProductoStockBajo, 0, len(productos))
	for _, p := range productos {
		out = append(out, dto.ProductoStockBajo{
			ProductoID:  p.ID,
			Nombre:      p.Nombre,
			StockActual: p.Stock,
			Categoria:   p.Categoria,
			Precio:      p.Precio,
			SedeID:      p.SedeID,
			SedeNombre:  nombreSede(p.SedeID, sedes),
		})
	}
	return out
}

// nombreSede never returns an empty label.
func nombreSede(id uint, sedes map[uint]model.Sede) string {
	if id == 0 {
		return "Sede no especificada"
	}
	if sd, ok := sedes[id]; ok && sd.Nombre != "" {
		return sd.Nombre
	}
	return fmt.Sprintf("Sede %d", id)
}

func condicionesAmbientales(temps []model.Temperatura, hums []model.Humedad) dto.CondicionesAmbientales {
	c := dto.CondicionesAmbientales{
		LecturasTemperatura: len(temps),
		LecturasHumedad:     len(hums),
	}
	if len(temps) > 0 {
		suma := 0.0
		for _, t := range temps {
			suma += t.Valor
		}
		c.TemperaturaPromedio = redondear(suma / float64(len(temps)))
		c.UltimaTemperatura = &dto.LecturaAmbiental{Valor: temps[0].Valor, Fecha: temps[0].Fecha}
	}
	if len(hums) > 0 {
		suma := 0.0
		for _, h := range hums {
			suma += h.Valor
		}
		c.HumedadPromedio = redondear(suma / float64(len(hums)))
		c.UltimaHumedad = &dto.LecturaAmbiental{Valor: hums[0].Valor, Fecha: hums[0].Fecha}
	}
	return c
}

func histogramaTipos(movimientos []model.Movimiento) map[string]int {
	h := make(map[string]int, len(model.TiposMovimiento))
	for _, t := range model.TiposMovimiento {
		h[t] = 0
	}
	for _, m := range movimientos {
		if _, ok := h[m.Tipo]; ok {
			h[m.Tipo]++
		}
	}
	return h
}

func redondear(v float64) float64 {
	return math.Round(v*100) / 100
}
