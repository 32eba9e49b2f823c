package service_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"panaderia/internal/dto"
	"panaderia/internal/model"
	"panaderia/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func snapshotBase() *dto.Snapshot {
	return &dto.Snapshot{
		Dias: 7,
		ResumenVentas: dto.ResumenVentas{
			TotalIngresos:              dec("1250"),
			TotalTransacciones:         40,
			IngresoPromedioTransaccion: dec("31.25"),
		},
		TiposMovimiento: map[string]int{},
		TotalProductos:  12,
		TotalSedes:      2,
	}
}

var (
	usuarioAdmin   = &model.Usuario{ID: 1, Username: "gerente", Rol: model.RolAdmin}
	usuarioRegular = &model.Usuario{ID: 2, Username: "cajero", Rol: model.RolUsuario}
)

func TestLineaProductoStockBajo(t *testing.T) {
	linea := service.LineaProductoStockBajo(dto.ProductoStockBajo{
		Nombre:      "ProductName",
		StockActual: 8,
		SedeID:      5,
		SedeNombre:  "Panadería Plaza",
	})
	assert.Equal(t, "ProductName: 8 unidades en Panadería Plaza", linea)
}

func TestRenderContexto_StockBajoIncluyeSede(t *testing.T) {
	snap := snapshotBase()
	snap.ProductosStockBajo = []dto.ProductoStockBajo{
		{Nombre: "Torta de Chocolate", StockActual: 8, SedeNombre: "Panadería Centro"},
		{Nombre: "Empanada", StockActual: 2.5, SedeNombre: "Sede 9"},
	}

	out := service.RenderContexto(snap, usuarioAdmin, time.Now())

	assert.Contains(t, out, "Torta de Chocolate: 8 unidades en Panadería Centro, Empanada: 2.5 unidades en Sede 9")
}

func TestRenderContexto_SinStockBajo(t *testing.T) {
	out := service.RenderContexto(snapshotBase(), usuarioAdmin, time.Now())
	assert.Contains(t, out, "Todos los productos tienen stock adecuado")
}

func TestRenderContexto_Permisos(t *testing.T) {
	outAdmin := service.RenderContexto(snapshotBase(), usuarioAdmin, time.Now())
	outRegular := service.RenderContexto(snapshotBase(), usuarioRegular, time.Now())

	assert.Contains(t, outAdmin, "- Usuario: gerente")
	assert.Contains(t, outAdmin, "Permisos: Administrador total")
	assert.Contains(t, outRegular, "- Rol: usuario")
	assert.Contains(t, outRegular, "Permisos: Usuario regular con acceso limitado")
}

func TestRenderContexto_MonedaLocal(t *testing.T) {
	snap := snapshotBase()
	snap.ProductosTop = []dto.ProductoTop{{Nombre: "Pan", CantidadVendida: 100, Ingresos: dec("30")}}
	snap.PerformanceSedes = []dto.PerformanceSede{{Nombre: "Centro", Ingresos: dec("1250"), Transacciones: 40}}

	out := service.RenderContexto(snap, usuarioAdmin, time.Now())

	assert.NotContains(t, out, "$")
	assert.Contains(t, out, "- Ingresos totales: S/. 1,250.00")
	assert.Contains(t, out, "- Promedio por transacción: S/. 31.25")
	assert.Contains(t, out, "- Pan: 100 unidades (S/. 30.00)")
	assert.Contains(t, out, "- Centro: S/. 1,250.00 en 40 transacciones")
}

func TestRenderContexto_Top5(t *testing.T) {
	snap := snapshotBase()
	for i := 1; i <= 8; i++ {
		snap.ProductosTop = append(snap.ProductosTop, dto.ProductoTop{
			Nombre:   fmt.Sprintf("Producto-%d", i),
			Ingresos: decimal.NewFromInt(int64(100 - i)),
		})
	}

	out := service.RenderContexto(snap, usuarioAdmin, time.Now())

	assert.Contains(t, out, "Producto-5:")
	assert.NotContains(t, out, "Producto-6:")
}

func TestRenderContexto_Ambiente(t *testing.T) {
	ahora := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	snap := snapshotBase()
	snap.CondicionesAmbientales = dto.CondicionesAmbientales{
		LecturasTemperatura: 1,
		TemperaturaPromedio: 24.5,
		UltimaTemperatura:   &dto.LecturaAmbiental{Valor: 24.5, Fecha: ahora.Add(-2 * time.Hour)},
	}

	out := service.RenderContexto(snap, usuarioAdmin, ahora)

	assert.Contains(t, out, "- Temperatura: 24.5°C (hace 2 horas)")
	assert.Contains(t, out, "- Humedad: Sin datos de humedad")
}

func TestRenderContexto_Acotado(t *testing.T) {
	snap := snapshotBase()
	for i := 0; i < 40; i++ {
		snap.ProductosStockBajo = append(snap.ProductosStockBajo, dto.ProductoStockBajo{
			Nombre: fmt.Sprintf("Producto %d", i), StockActual: 1, SedeNombre: "Centro",
		})
	}
	for i := 0; i < 10; i++ {
		snap.ProductosTop = append(snap.ProductosTop, dto.ProductoTop{Nombre: fmt.Sprintf("Top %d", i), Ingresos: dec("10")})
	}

	out := service.RenderContexto(snap, usuarioAdmin, time.Now())

	assert.Contains(t, out, "(y 25 productos más)")
	assert.Less(t, len(strings.Fields(out)), 500)
	for i := 0; i < 15; i++ {
		assert.Contains(t, out, fmt.Sprintf("Producto %d: 1 unidades en Centro", i))
	}
	assert.NotContains(t, out, "Producto 15: ")
}

func TestTiempoTranscurrido(t *testing.T) {
	ahora := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		hace time.Duration
		want string
	}{
		{0, "ahora mismo"},
		{30 * time.Second, "ahora mismo"},
		{-5 * time.Minute, "ahora mismo"},
		{time.Minute, "hace 1 minuto"},
		{45 * time.Minute, "hace 45 minutos"},
		{time.Hour, "hace 1 hora"},
		{5*time.Hour + 59*time.Minute, "hace 5 horas"},
		{24 * time.Hour, "hace 1 día"},
		{72 * time.Hour, "hace 3 días"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, service.TiempoTranscurrido(ahora.Add(-tc.hace), ahora), "hace=%s", tc.hace)
	}
}

func TestFormatoSoles(t *testing.T) {
	cases := map[string]string{
		"0":           "S/. 0.00",
		"9.5":         "S/. 9.50",
		"999.999":     "S/. 1,000.00",
		"1250":        "S/. 1,250.00",
		"1234567.891": "S/. 1,234,567.89",
		"-5":          "S/. -5.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, service.FormatoSoles(dec(in)), in)
	}
}

func TestMejorarConsulta(t *testing.T) {
	inv := service.MejorarConsulta("¿Qué productos tienen poco stock?", service.ConsultaInventario)
	assert.Contains(t, inv, "Recuerda incluir la sede")
	assert.Contains(t, inv, "IMPORTANTE: Usa SIEMPRE soles peruanos (S/.)")

	ventas := service.MejorarConsulta("¿Cuánto vendimos hoy?", service.ConsultaVentas)
	assert.NotContains(t, ventas, "Recuerda incluir la sede")
	assert.True(t, strings.HasPrefix(ventas, "¿Cuánto vendimos hoy?"))
}

func TestPromptSistema_IncluyeContexto(t *testing.T) {
	out := service.PromptSistema("CONTEXTO-X")
	assert.Contains(t, out, "CONTEXTO-X")
	assert.Contains(t, out, "máximo 150 palabras")
	assert.NotContains(t, out, "$")
}
