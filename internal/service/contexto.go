package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"panaderia/internal/dto"
	"panaderia/internal/model"

	"github.com/shopspring/decimal"
)

const (
	VentanaContextoDias = 7

	topContextoN         = 5
	maxStockBajoContexto = 15

	simboloMoneda = "S/."
)

// RenderContexto renders the snapshot as the narrative handed to the language
// model. Output is deterministic for a given snapshot, user and instant.
func RenderContexto(snap *dto.Snapshot, u *model.Usuario, ahora time.Time) string {
	var b strings.Builder

	b.WriteString("CONTEXTO DE LA PANADERÍA - BASE DE DATOS ACTUAL\n\n")

	b.WriteString("INFORMACIÓN DEL USUARIO:\n")
	fmt.Fprintf(&b, "- Usuario: %s\n", u.Username)
	fmt.Fprintf(&b, "- Rol: %s\n", u.Rol)
	fmt.Fprintf(&b, "- Permisos: %s\n\n", permisos(u))

	fmt.Fprintf(&b, "RESUMEN DEL NEGOCIO (últimos %d días):\n", snap.Dias)
	fmt.Fprintf(&b, "- Ingresos totales: %s\n", FormatoSoles(snap.ResumenVentas.TotalIngresos))
	fmt.Fprintf(&b, "- Transacciones: %d\n", snap.ResumenVentas.TotalTransacciones)
	fmt.Fprintf(&b, "- Promedio por transacción: %s\n\n", FormatoSoles(snap.ResumenVentas.IngresoPromedioTransaccion))

	fmt.Fprintf(&b, "PRODUCTOS CON STOCK BAJO (menos de %s unidades):\n", formatoCantidad(UmbralStockBajo))
	b.WriteString(lineaStockBajo(snap.ProductosStockBajo))
	b.WriteString("\n\n")

	amb := snap.CondicionesAmbientales
	b.WriteString("CONDICIONES AMBIENTALES ACTUALES:\n")
	if amb.UltimaTemperatura != nil {
		fmt.Fprintf(&b, "- Temperatura: %.1f°C (%s)\n", amb.UltimaTemperatura.Valor, TiempoTranscurrido(amb.UltimaTemperatura.Fecha, ahora))
	} else {
		b.WriteString("- Temperatura: Sin datos de temperatura\n")
	}
	if amb.UltimaHumedad != nil {
		fmt.Fprintf(&b, "- Humedad: %.1f%% (%s)\n", amb.UltimaHumedad.Valor, TiempoTranscurrido(amb.UltimaHumedad.Fecha, ahora))
	} else {
		b.WriteString("- Humedad: Sin datos de humedad\n")
	}
	if amb.LecturasTemperatura > 0 || amb.LecturasHumedad > 0 {
		fmt.Fprintf(&b, "- Promedios recientes: %.1f°C, %.1f%%\n", amb.TemperaturaPromedio, amb.HumedadPromedio)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "SEDES OPERATIVAS: %d\n", snap.TotalSedes)
	fmt.Fprintf(&b, "PRODUCTOS TOTALES: %d\n\n", snap.TotalProductos)

	fmt.Fprintf(&b, "PRODUCTOS MÁS VENDIDOS (últimos %d días):\n", snap.Dias)
	top := snap.ProductosTop
	if len(top) > topContextoN {
		top = top[:topContextoN]
	}
	if len(top) == 0 {
		b.WriteString("- Sin ventas registradas\n")
	}
	for _, p := range top {
		fmt.Fprintf(&b, "- %s: %s unidades (%s)\n", p.Nombre, formatoCantidad(p.CantidadVendida), FormatoSoles(p.Ingresos))
	}
	b.WriteString("\n")

	b.WriteString("RENDIMIENTO POR SEDE:\n")
	if len(snap.PerformanceSedes) == 0 {
		b.WriteString("- Sin ventas registradas\n")
	}
	for _, sd := range snap.PerformanceSedes {
		fmt.Fprintf(&b, "- %s: %s en %d transacciones\n", sd.Nombre, FormatoSoles(sd.Ingresos), sd.Transacciones)
	}

	return b.String()
}

func permisos(u *model.Usuario) string {
	if u.EsAdmin() {
		return "Administrador total"
	}
	return "Usuario regular con acceso limitado"
}

// lineaStockBajo always pairs product and location in the same clause.
func lineaStockBajo(items []dto.ProductoStockBajo) string {
	if len(items) == 0 {
		return "Todos los productos tienen stock adecuado"
	}
	visibles := items
	if len(visibles) > maxStockBajoContexto {
		visibles = visibles[:maxStockBajoContexto]
	}
	partes := make([]string, 0, len(visibles))
	for _, p := range visibles {
		partes = append(partes, LineaProductoStockBajo(p))
	}
	linea := strings.Join(partes, ", ")
	if resto := len(items) - len(visibles); resto > 0 {
		linea += fmt.Sprintf(" (y %d productos más)", resto)
	}
	return linea
}

// LineaProductoStockBajo renders "Nombre: N unidades en Sede".
func LineaProductoStockBajo(p dto.ProductoStockBajo) string {
	sede := p.SedeNombre
	if sede == "" {
		sede = "Sede no especificada"
	}
	return fmt.Sprintf("%s: %s unidades en %s", p.Nombre, formatoCantidad(p.StockActual), sede)
}

// TiempoTranscurrido buckets the age of a reading into days, hours or minutes.
func TiempoTranscurrido(fecha, ahora time.Time) string {
	d := ahora.Sub(fecha)
	switch {
	case d >= 24*time.Hour:
		return "hace " + plural(int(d/(24*time.Hour)), "día", "días")
	case d >= time.Hour:
		return "hace " + plural(int(d/time.Hour), "hora", "horas")
	case d >= time.Minute:
		return "hace " + plural(int(d/time.Minute), "minuto", "minutos")
	default:
		return "ahora mismo"
	}
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}

// FormatoSoles renders an amount as "S/. 1,250.00".
func FormatoSoles(d decimal.Decimal) string {
	s := d.StringFixed(2)
	signo := ""
	if strings.HasPrefix(s, "-") {
		signo, s = "-", s[1:]
	}
	entero, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range entero {
		if i > 0 && (len(entero)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return simboloMoneda + " " + signo + b.String() + "." + frac
}

func formatoCantidad(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PromptSistema wraps the rendered context with the assistant instructions.
func PromptSistema(contexto string) string {
	return `Eres un asistente inteligente especializado en gestión de panaderías peruanas. Tu trabajo es responder preguntas sobre el negocio usando los datos proporcionados.

CONTEXTO DE LA BASE DE DATOS:
` + contexto + `
INSTRUCCIONES:
1. Responde SOLO con información basada en los datos proporcionados
2. Si no tienes los datos necesarios, dilo claramente
3. Sé conciso pero informativo (máximo 150 palabras)
4. Usa un tono profesional pero amigable
5. Incluye números específicos cuando sea relevante
6. Si es una consulta sobre acciones (como registrar ventas), explica el proceso
7. Para datos ambientales, menciona si hay alguna condición preocupante
8. Cuando menciones productos con stock bajo, SIEMPRE incluye la sede donde se encuentra cada producto
   - CORRECTO: "Torta de Chocolate: 8 unidades en Panadería Centro"
   - INCORRECTO: "Torta de Chocolate: 8 unidades"
9. MONEDA: Todos los precios e ingresos están en SOLES PERUANOS (S/.). Nunca uses otra moneda.

Responde en español de manera natural y conversacional.`
}

var palabrasStock = []string{"stock", "inventario", "poco stock", "low stock"}

// MejorarConsulta appends the location and currency reminders to the user text.
func MejorarConsulta(texto, tipo string) string {
	out := texto
	if tipo == ConsultaInventario && contieneAlguna(strings.ToLower(texto), palabrasStock) {
		out += " - Recuerda incluir la sede (ubicación) para cada producto con stock bajo."
	}
	return out + " IMPORTANTE: Usa SIEMPRE soles peruanos (S/.) para cantidades monetarias, NUNCA dólares."
}
