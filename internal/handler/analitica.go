package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"panaderia/internal/infra"
	"panaderia/internal/service"

	"github.com/gin-gonic/gin"
)

const snapshotDiasPorDefecto = 30

type AnaliticaHandler struct {
	analitica service.AnaliticaService
	insights  service.InsightsService
	loc       *time.Location
}

func NewAnaliticaHandler(analitica service.AnaliticaService, insights service.InsightsService, loc *time.Location) *AnaliticaHandler {
	return &AnaliticaHandler{analitica: analitica, insights: insights, loc: loc}
}

// Snapshot godoc
// @Summary Metricas agregadas del negocio
// @Tags ai
// @Produce json
// @Param days query int false "Ventana en dias" default(30)
// @Success 200 {object} dto.Snapshot
// @Failure 400 {object} apierror.APIError
// @Router /v1/ai/snapshot [get]
func (h *AnaliticaHandler) Snapshot(c *gin.Context) {
	dias, ok := queryInt(c, "days", snapshotDiasPorDefecto)
	if !ok {
		return
	}
	snap, err := h.analitica.CalcularSnapshot(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SnapshotPDF godoc
// @Summary Reporte PDF de las metricas
// @Tags ai
// @Produce application/pdf
// @Param days query int false "Ventana en dias" default(30)
// @Router /v1/ai/snapshot/pdf [get]
func (h *AnaliticaHandler) SnapshotPDF(c *gin.Context) {
	dias, ok := queryInt(c, "days", snapshotDiasPorDefecto)
	if !ok {
		return
	}
	snap, err := h.analitica.CalcularSnapshot(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	ahora := time.Now().In(h.loc)
	if err := infra.WriteSnapshotPDF(&buf, snap, ahora); err != nil {
		respondError(c, err)
		return
	}
	nombre := fmt.Sprintf("reporte_%s_%dd.pdf", ahora.Format("20060102"), dias)
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// BusinessInsights godoc
// @Summary Insights de negocio generados por IA
// @Tags ai
// @Produce json
// @Param days query int false "Ventana en dias" default(7)
// @Success 200 {object} dto.BusinessInsightsResponse
// @Failure 502 {object} apierror.APIError
// @Router /v1/ai/business-insights [get]
func (h *AnaliticaHandler) BusinessInsights(c *gin.Context) {
	dias, ok := queryInt(c, "days", service.InsightsDiasPorDefecto)
	if !ok {
		return
	}
	resp, err := h.insights.BusinessInsights(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnalisisProducto godoc
// @Summary Analisis de IA de un producto
// @Tags ai
// @Produce json
// @Param product_id path int true "Producto"
// @Param days query int false "Ventana en dias" default(30)
// @Success 200 {object} dto.ProductoAnalisisResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ai/product-analysis/{product_id} [get]
func (h *AnaliticaHandler) AnalisisProducto(c *gin.Context) {
	id, ok := parseUintParam(c, "product_id")
	if !ok {
		return
	}
	dias, ok := queryInt(c, "days", service.AnalisisDiasPorDefecto)
	if !ok {
		return
	}
	resp, err := h.insights.AnalisisProducto(c.Request.Context(), id, dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenDiario godoc
// @Summary Resumen ejecutivo del dia
// @Tags ai
// @Produce json
// @Success 200 {object} dto.ResumenDiarioResponse
// @Router /v1/ai/daily-summary [get]
func (h *AnaliticaHandler) ResumenDiario(c *gin.Context) {
	resp, err := h.insights.ResumenDiario(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
