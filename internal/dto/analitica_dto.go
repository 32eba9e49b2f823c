package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Snapshot ────────────────────────────────────────────────────────────────
// Ephemeral aggregate recomputed per request; never persisted.

type Snapshot struct {
	PeriodoAnalisis        string                 `json:"periodo_analisis"`
	Dias                   int                    `json:"dias"`
	Desde                  time.Time              `json:"desde"`
	Hasta                  time.Time              `json:"hasta"`
	ResumenVentas          ResumenVentas          `json:"resumen_ventas"`
	ProductosTop           []ProductoTop          `json:"productos_top"`
	PerformanceSedes       []PerformanceSede      `json:"performance_sedes"`
	ProductosStockBajo     []ProductoStockBajo    `json:"productos_stock_bajo"`
	CondicionesAmbientales CondicionesAmbientales `json:"condiciones_ambientales"`
	TiposMovimiento        map[string]int         `json:"tipos_movimiento"`
	TotalProductos         int                    `json:"total_productos"`
	TotalSedes             int                    `json:"total_sedes"`
}

type ResumenVentas struct {
	TotalIngresos              decimal.Decimal `json:"total_ingresos"`
	TotalTransacciones         int             `json:"total_transacciones"`
	IngresoPromedioTransaccion decimal.Decimal `json:"ingreso_promedio_transaccion"`
}

type ProductoTop struct {
	ProductoID      uint            `json:"producto_id"`
	Nombre          string          `json:"nombre"`
	Categoria       string          `json:"categoria"`
	CantidadVendida float64         `json:"cantidad_vendida"`
	Ingresos        decimal.Decimal `json:"ingresos"`
}

type PerformanceSede struct {
	SedeID          uint            `json:"sede_id"`
	Nombre          string          `json:"nombre"`
	Ingresos        decimal.Decimal `json:"ingresos"`
	Transacciones   int             `json:"transacciones"`
	IngresoPromedio decimal.Decimal `json:"ingreso_promedio"`
}

type ProductoStockBajo struct {
	ProductoID  uint            `json:"producto_id"`
	Nombre      string          `json:"nombre"`
	StockActual float64         `json:"stock_actual"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	SedeID      uint            `json:"sede_id"`
	SedeNombre  string          `json:"sede_nombre"`
}

type LecturaAmbiental struct {
	Valor float64   `json:"valor"`
	Fecha time.Time `json:"fecha"`
}

type CondicionesAmbientales struct {
	TemperaturaPromedio float64           `json:"temperatura_promedio"`
	HumedadPromedio     float64           `json:"humedad_promedio"`
	LecturasTemperatura int               `json:"lecturas_temperatura"`
	LecturasHumedad     int               `json:"lecturas_humedad"`
	UltimaTemperatura   *LecturaAmbiental `json:"ultima_temperatura"`
	UltimaHumedad       *LecturaAmbiental `json:"ultima_humedad"`
}

// ─── Insights ────────────────────────────────────────────────────────────────

// BusinessInsightsResponse carries the report ID generated on first
// computation; a cached copy keeps the same ID.
type BusinessInsightsResponse struct {
	Success     bool      `json:"success"`
	ReportID    string    `json:"report_id"`
	Data        *Snapshot `json:"data"`
	AIInsights  string    `json:"ai_insights"`
	GeneratedAt string    `json:"generated_at"`
}

type ProductoDetalle struct {
	ID          uint            `json:"id"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	StockActual float64         `json:"stock_actual"`
	Categoria   string          `json:"categoria"`
	Descripcion string          `json:"descripcion"`
}

type MovimientoReciente struct {
	Tipo     string          `json:"tipo"`
	Cantidad float64         `json:"cantidad"`
	Precio   decimal.Decimal `json:"precio"`
	Fecha    string          `json:"fecha"`
	SedeID   uint            `json:"sede_id"`
}

type ResumenPeriodoProducto struct {
	TotalMovimientos int             `json:"total_movimientos"`
	VentasCantidad   float64         `json:"ventas_cantidad"`
	IngresosVentas   decimal.Decimal `json:"ingresos_ventas"`
}

type ProductoAnalisisData struct {
	Producto             ProductoDetalle        `json:"producto"`
	MovimientosRecientes []MovimientoReciente   `json:"movimientos_recientes"`
	ResumenPeriodo       ResumenPeriodoProducto `json:"resumen_periodo"`
}

type ProductoAnalisisResponse struct {
	Success     bool                  `json:"success"`
	ReportID    string                `json:"report_id"`
	ProductData *ProductoAnalisisData `json:"product_data"`
	AIAnalysis  string                `json:"ai_analysis"`
	GeneratedAt string                `json:"generated_at"`
}

type ResumenVentasDia struct {
	IngresosTotales   decimal.Decimal `json:"ingresos_totales"`
	ProductosVendidos float64         `json:"productos_vendidos"`
	Transacciones     int             `json:"transacciones"`
}

type ResumenDiarioData struct {
	Fecha            string           `json:"fecha"`
	ResumenVentas    ResumenVentasDia `json:"resumen_ventas"`
	ActividadPorTipo map[string]int   `json:"actividad_por_tipo"`
	ProductosActivos int              `json:"productos_activos"`
	SedesOperando    int              `json:"sedes_operando"`
}

type ResumenDiarioResponse struct {
	Success     bool               `json:"success"`
	ReportID    string             `json:"report_id"`
	DailyData   *ResumenDiarioData `json:"daily_data"`
	AISummary   string             `json:"ai_summary"`
	GeneratedAt string             `json:"generated_at"`
}
