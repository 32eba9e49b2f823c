package infra

// pdf.go renders the business snapshot as an A4 report using go-pdf/fpdf:
//   - header with analysed window and generation time
//   - sales summary
//   - top products and per-location tables
//   - low-stock list with location, environment and movement histogram

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"panaderia/internal/dto"
	"panaderia/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// WriteSnapshotPDF writes the snapshot report to w.
func WriteSnapshotPDF(w io.Writer, snap *dto.Snapshot, generado time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Reporte de Negocio - Panadería"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s (%s a %s)", snap.PeriodoAnalisis,
		snap.Desde.Format("02/01/2006"), snap.Hasta.Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Generado: "+generado.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Sales summary ────────────────────────────────────────────────────────
	seccion(pdf, tr("Resumen de ventas"))
	pdf.SetFont("Helvetica", "", 10)
	filaClaveValor(pdf, contentW, "Ingresos totales", soles(snap.ResumenVentas.TotalIngresos))
	filaClaveValor(pdf, contentW, "Transacciones", strconv.Itoa(snap.ResumenVentas.TotalTransacciones))
	filaClaveValor(pdf, contentW, tr("Promedio por transacción"), soles(snap.ResumenVentas.IngresoPromedioTransaccion))
	filaClaveValor(pdf, contentW, tr("Productos / Sedes"), fmt.Sprintf("%d / %d", snap.TotalProductos, snap.TotalSedes))
	pdf.Ln(3)

	// ── Top products ─────────────────────────────────────────────────────────
	seccion(pdf, tr("Productos más vendidos"))
	cols := []float64{contentW * 0.45, contentW * 0.25, contentW * 0.12, contentW * 0.18}
	encabezado(pdf, cols, []string{"Producto", tr("Categoría"), "Cant.", "Ingresos"})
	pdf.SetFont("Helvetica", "", 9)
	for _, p := range snap.ProductosTop {
		pdf.CellFormat(cols[0], 6, tr(p.Nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 6, tr(p.Categoria), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 6, strconv.FormatFloat(p.CantidadVendida, 'f', -1, 64), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, soles(p.Ingresos), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Locations ────────────────────────────────────────────────────────────
	seccion(pdf, tr("Rendimiento por sede"))
	cols = []float64{contentW * 0.45, contentW * 0.2, contentW * 0.15, contentW * 0.2}
	encabezado(pdf, cols, []string{"Sede", "Ingresos", "Trans.", "Promedio"})
	pdf.SetFont("Helvetica", "", 9)
	for _, sd := range snap.PerformanceSedes {
		pdf.CellFormat(cols[0], 6, tr(sd.Nombre), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 6, soles(sd.Ingresos), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 6, strconv.Itoa(sd.Transacciones), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, soles(sd.IngresoPromedio), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Low stock ────────────────────────────────────────────────────────────
	seccion(pdf, "Stock bajo")
	pdf.SetFont("Helvetica", "", 9)
	if len(snap.ProductosStockBajo) == 0 {
		pdf.CellFormat(contentW, 6, "Todos los productos tienen stock adecuado", "", 1, "L", false, 0, "")
	}
	for _, p := range snap.ProductosStockBajo {
		linea := fmt.Sprintf("%s: %s unidades en %s", p.Nombre, strconv.FormatFloat(p.StockActual, 'f', -1, 64), p.SedeNombre)
		pdf.CellFormat(contentW, 6, tr(linea), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Environment and movement kinds ───────────────────────────────────────
	seccion(pdf, tr("Ambiente y movimientos"))
	pdf.SetFont("Helvetica", "", 10)
	amb := snap.CondicionesAmbientales
	filaClaveValor(pdf, contentW, "Temperatura promedio", tr(fmt.Sprintf("%.1f °C (%d lecturas)", amb.TemperaturaPromedio, amb.LecturasTemperatura)))
	filaClaveValor(pdf, contentW, "Humedad promedio", fmt.Sprintf("%.1f %% (%d lecturas)", amb.HumedadPromedio, amb.LecturasHumedad))
	for _, tipo := range model.TiposMovimiento {
		filaClaveValor(pdf, contentW, "Movimientos: "+tipo, strconv.Itoa(snap.TiposMovimiento[tipo]))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: output: %w", err)
	}
	return nil
}

func seccion(pdf *fpdf.Fpdf, titulo string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, titulo, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func encabezado(pdf *fpdf.Fpdf, cols []float64, titulos []string) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, t := range titulos {
		align := "L"
		if i > 0 {
			align = "R"
		}
		ln := 0
		if i == len(titulos)-1 {
			ln = 1
		}
		pdf.CellFormat(cols[i], 6, t, "B", ln, align, false, 0, "")
	}
}

func filaClaveValor(pdf *fpdf.Fpdf, w float64, clave, valor string) {
	pdf.CellFormat(w*0.6, 6, clave, "", 0, "L", false, 0, "")
	pdf.CellFormat(w*0.4, 6, valor, "", 1, "R", false, 0, "")
}

func soles(d decimal.Decimal) string {
	return "S/. " + d.StringFixed(2)
}
