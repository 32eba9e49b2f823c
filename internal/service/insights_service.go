package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"panaderia/internal/dto"
	"panaderia/internal/infra"
	"panaderia/internal/model"
	"panaderia/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InsightsDiasPorDefecto = 7
	AnalisisDiasPorDefecto = 30

	maxMovimientosAnalisis = 50
)

// Cache is the byte cache used for generated reports. Any Get error is a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InsightsService produces language-model reports over the business data.
type InsightsService interface {
	BusinessInsights(ctx context.Context, dias int) (*dto.BusinessInsightsResponse, error)
	AnalisisProducto(ctx context.Context, productoID uint, dias int) (*dto.ProductoAnalisisResponse, error)
	ResumenDiario(ctx context.Context) (*dto.ResumenDiarioResponse, error)
}

type InsightsConfig struct {
	MaxTokens   int
	Temperatura float32
	Timeout     time.Duration
	CacheTTL    time.Duration
	Location    *time.Location
}

type insightsService struct {
	repo      repository.MetricasRepository
	analitica AnaliticaService
	gateway   infra.AIGateway
	cache     Cache
	cfg       InsightsConfig
	now       func() time.Time
}

// NewInsightsService accepts a nil cache; caching is then disabled.
func NewInsightsService(repo repository.MetricasRepository, analitica AnaliticaService, gateway infra.AIGateway, cache Cache, cfg InsightsConfig) InsightsService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &insightsService{
		repo:      repo,
		analitica: analitica,
		gateway:   gateway,
		cache:     cache,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().In(cfg.Location) },
	}
}

const promptAnalista = `Eres un analista de negocio experto especializado en panaderías peruanas. Analiza los datos de negocio que recibes y proporciona insights útiles y accionables.
Responde en español con insights específicos, recomendaciones prácticas y observaciones relevantes para el negocio de panadería. Sé conciso pero informativo.
Todos los montos están en soles peruanos (S/.); nunca uses otra moneda.`

const instruccionesNegocio = `Analiza estos datos de panadería y proporciona:

1. INSIGHTS PRINCIPALES (3-4 puntos clave sobre el rendimiento)
2. RECOMENDACIONES ESPECÍFICAS (mejoras operativas concretas)
3. ALERTAS (problemas que requieren atención inmediata)
4. OPORTUNIDADES (áreas de crecimiento o optimización)

IMPORTANTE: Cuando menciones productos con stock bajo, SIEMPRE incluye el nombre de la sede donde se encuentra cada producto.
Por ejemplo: "Torta de Chocolate: 8 unidades en Panadería Centro" en lugar de solo "Torta de Chocolate: 8 unidades".

Enfócate en aspectos prácticos como gestión de inventario, rendimiento por ubicación, productos populares, y condiciones de almacenamiento.`

const instruccionesResumenDiario = `Genera un resumen ejecutivo del día actual enfocándose en:

1. RENDIMIENTO DEL DÍA (logros y métricas clave)
2. ESTADO OPERATIVO (actividad general del negocio)
3. PUNTOS DE ATENCIÓN (si hay algo que requiere seguimiento)
4. PREPARACIÓN PARA MAÑANA (recomendaciones para el próximo día)

Mantén un tono profesional pero accesible, como si fuera un reporte para el gerente de la panadería.`

func instruccionesProducto(nombre string) string {
	return fmt.Sprintf(`Analiza el rendimiento del producto "%s" y proporciona:

1. ANÁLISIS DE VENTAS (tendencias, velocidad de rotación)
2. GESTIÓN DE INVENTARIO (recomendaciones de stock)
3. PRICING INSIGHTS (análisis de precios y márgenes)
4. RECOMENDACIONES (optimizaciones específicas para este producto)

Considera el stock actual, patrones de venta, y movimientos recientes.`, nombre)
}

func (s *insightsService) BusinessInsights(ctx context.Context, dias int) (*dto.BusinessInsightsResponse, error) {
	if dias == 0 {
		dias = InsightsDiasPorDefecto
	}
	hoy := s.now()
	key := fmt.Sprintf("business:%d:%s", dias, hoy.Format(time.DateOnly))

	var resp dto.BusinessInsightsResponse
	if s.leerCache(ctx, key, &resp) {
		return &resp, nil
	}

	snap, err := s.analitica.CalcularSnapshot(ctx, dias)
	if err != nil {
		return nil, err
	}
	texto, err := s.analizar(ctx, instruccionesNegocio, snap)
	if err != nil {
		return nil, err
	}

	resp = dto.BusinessInsightsResponse{
		Success:     true,
		ReportID:    uuid.NewString(),
		Data:        snap,
		AIInsights:  texto,
		GeneratedAt: hoy.Format(time.RFC3339),
	}
	s.escribirCache(ctx, key, resp)
	return &resp, nil
}

func (s *insightsService) AnalisisProducto(ctx context.Context, productoID uint, dias int) (*dto.ProductoAnalisisResponse, error) {
	if dias == 0 {
		dias = AnalisisDiasPorDefecto
	}
	if dias < 1 || dias > MaxDiasVentana {
		return nil, entradaInvalida("dias debe estar entre 1 y %d", MaxDiasVentana)
	}
	hoy := s.now()
	key := fmt.Sprintf("producto:%d:%d:%s", productoID, dias, hoy.Format(time.DateOnly))

	var resp dto.ProductoAnalisisResponse
	if s.leerCache(ctx, key, &resp) {
		return &resp, nil
	}

	p, err := s.repo.FindProductoByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, noEncontrado("Producto no encontrado")
		}
		return nil, storeErr("buscar producto", err)
	}

	desde := hoy.AddDate(0, 0, -dias)
	movimientos, err := s.repo.ListMovimientos(ctx, repository.MovimientoFilter{
		ProductoID: &productoID,
		Desde:      &desde,
		Recientes:  true,
	})
	if err != nil {
		return nil, storeErr("listar movimientos", err)
	}

	data := &dto.ProductoAnalisisData{
		Producto: dto.ProductoDetalle{
			ID:          p.ID,
			Nombre:      p.Nombre,
			Precio:      p.Precio,
			StockActual: p.Stock,
			Categoria:   p.Categoria,
			Descripcion: p.Descripcion,
		},
		MovimientosRecientes: make([]dto.MovimientoReciente, 0, min(len(movimientos), maxMovimientosAnalisis)),
		ResumenPeriodo: dto.ResumenPeriodoProducto{
			TotalMovimientos: len(movimientos),
			IngresosVentas:   decimal.Zero,
		},
	}
	for i, m := range movimientos {
		if i < maxMovimientosAnalisis {
			data.MovimientosRecientes = append(data.MovimientosRecientes, dto.MovimientoReciente{
				Tipo:     m.Tipo,
				Cantidad: m.Cantidad,
				Precio:   m.Precio,
				Fecha:    m.Fecha.In(s.cfg.Location).Format(time.RFC3339),
				SedeID:   m.SedeID,
			})
		}
		if m.Tipo == model.MovimientoVenta {
			data.ResumenPeriodo.VentasCantidad += m.Cantidad
			data.ResumenPeriodo.IngresosVentas = data.ResumenPeriodo.IngresosVentas.Add(m.Ingreso())
		}
	}
	data.ResumenPeriodo.IngresosVentas = data.ResumenPeriodo.IngresosVentas.Round(2)

	texto, err := s.analizar(ctx, instruccionesProducto(p.Nombre), data)
	if err != nil {
		return nil, err
	}

	resp = dto.ProductoAnalisisResponse{
		Success:     true,
		ReportID:    uuid.NewString(),
		ProductData: data,
		AIAnalysis:  texto,
		GeneratedAt: hoy.Format(time.RFC3339),
	}
	s.escribirCache(ctx, key, resp)
	return &resp, nil
}

func (s *insightsService) ResumenDiario(ctx context.Context) (*dto.ResumenDiarioResponse, error) {
	hoy := s.now()
	inicioDia := time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, hoy.Location())
	key := "diario:" + hoy.Format(time.DateOnly)

	var resp dto.ResumenDiarioResponse
	if s.leerCache(ctx, key, &resp) {
		return &resp, nil
	}

	movimientos, err := s.repo.ListMovimientos(ctx, repository.MovimientoFilter{Desde: &inicioDia})
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

	ingresos := decimal.Zero
	vendidos := 0.0
	transacciones := 0
	for _, m := range movimientos {
		if m.Tipo != model.MovimientoVenta {
			continue
		}
		ingresos = ingresos.Add(m.Ingreso())
		vendidos += m.Cantidad
		transacciones++
	}

	data := &dto.ResumenDiarioData{
		Fecha: hoy.Format(time.DateOnly),
		ResumenVentas: dto.ResumenVentasDia{
			IngresosTotales:   ingresos.Round(2),
			ProductosVendidos: redondear(vendidos),
			Transacciones:     transacciones,
		},
		ActividadPorTipo: histogramaTipos(movimientos),
		ProductosActivos: len(productos),
		SedesOperando:    len(sedes),
	}

	texto, err := s.analizar(ctx, instruccionesResumenDiario, data)
	if err != nil {
		return nil, err
	}

	resp = dto.ResumenDiarioResponse{
		Success:     true,
		ReportID:    uuid.NewString(),
		DailyData:   data,
		AISummary:   texto,
		GeneratedAt: hoy.Format(time.RFC3339),
	}
	s.escribirCache(ctx, key, resp)
	return &resp, nil
}

// analizar sends the data as JSON together with the report instructions.
func (s *insightsService) analizar(ctx context.Context, instrucciones string, data any) (string, error) {
	datos, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializar datos: %w", err)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Timeout)
	defer cancel()

	inicio := time.Now()
	texto, err := s.gateway.Completar(callCtx, infra.Completion{
		Sistema:     promptAnalista,
		Usuario:     "DATOS DEL NEGOCIO:\n" + string(datos) + "\n\nINSTRUCCIONES:\n" + instrucciones,
		MaxTokens:   s.cfg.MaxTokens,
		Temperatura: s.cfg.Temperatura,
	})
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(inicio)).Msg("insights: fallo del proveedor de IA")
		return "", gatewayErr("generar análisis", err)
	}
	return texto, nil
}

func (s *insightsService) leerCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return false
	}
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

// escribirCache is best effort.
func (s *insightsService) escribirCache(ctx context.Context, key string, v any) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(context.WithoutCancel(ctx), key, b, s.cfg.CacheTTL); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("insights: no se pudo escribir en caché")
	}
}
