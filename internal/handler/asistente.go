package handler

import (
	"io"
	"net/http"
	"strconv"

	"panaderia/internal/apierror"
	"panaderia/internal/dto"
	"panaderia/internal/service"

	"github.com/gin-gonic/gin"
)

// maxAudioBytes matches the upload limit of the speech-to-text providers.
const maxAudioBytes = 25 << 20

type AsistenteHandler struct{ svc service.AsistenteService }

func NewAsistenteHandler(svc service.AsistenteService) *AsistenteHandler {
	return &AsistenteHandler{svc: svc}
}

// Transcribir godoc
// @Summary Transcribe un audio a texto
// @Tags voice
// @Accept multipart/form-data
// @Produce json
// @Param audio_file formData file true "Audio"
// @Success 200 {object} dto.TranscripcionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 502 {object} apierror.FalloResponse
// @Router /v1/voice/transcribe [post]
func (h *AsistenteHandler) Transcribir(c *gin.Context) {
	audio, ok := leerAudio(c)
	if !ok {
		return
	}
	resp, err := h.svc.Transcribir(c.Request.Context(), usuarioID(c), audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Consultar godoc
// @Summary Procesa una consulta de texto con el asistente
// @Tags voice
// @Accept json
// @Produce json
// @Param body body dto.ConsultaRequest true "Consulta"
// @Success 200 {object} dto.ConsultaResponse
// @Failure 502 {object} apierror.FalloResponse
// @Router /v1/voice/query [post]
func (h *AsistenteHandler) Consultar(c *gin.Context) {
	var req dto.ConsultaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ProcesarConsulta(c.Request.Context(), usuarioID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Chat godoc
// @Summary Turno de voz completo: transcripcion y respuesta
// @Tags voice
// @Accept multipart/form-data
// @Produce json
// @Param audio_file formData file true "Audio"
// @Param session_id formData int false "Sesion activa"
// @Success 200 {object} dto.VozChatResponse
// @Failure 502 {object} apierror.FalloResponse
// @Router /v1/voice/chat [post]
func (h *AsistenteHandler) Chat(c *gin.Context) {
	audio, ok := leerAudio(c)
	if !ok {
		return
	}

	var sessionID *uint
	if raw := c.PostForm("session_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("session_id invalido"))
			return
		}
		id := uint(v)
		sessionID = &id
	}

	resp, err := h.svc.ProcesarVoz(c.Request.Context(), usuarioID(c), sessionID, audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary Historial de una sesion (mas antiguo primero)
// @Tags voice
// @Produce json
// @Param session_id path int true "Sesion"
// @Param limit query int false "Maximo de consultas" default(20)
// @Success 200 {object} dto.HistorialResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/voice/history/{session_id} [get]
func (h *AsistenteHandler) Historial(c *gin.Context) {
	id, ok := parseUintParam(c, "session_id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", service.HistorialLimitePorDefecto)
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), usuarioID(c), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sesiones godoc
// @Summary Sesiones del usuario (mas reciente primero)
// @Tags voice
// @Produce json
// @Param active_only query bool false "Solo activas"
// @Param limit query int false "Maximo" default(10)
// @Success 200 {object} dto.SesionesResponse
// @Router /v1/voice/sessions [get]
func (h *AsistenteHandler) Sesiones(c *gin.Context) {
	soloActivas := c.Query("active_only") == "true"
	limit, ok := queryInt(c, "limit", service.SesionesLimitePorDefecto)
	if !ok {
		return
	}
	resp, err := h.svc.ListarSesiones(c.Request.Context(), usuarioID(c), soloActivas, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CerrarSesion godoc
// @Summary Cierra una sesion activa
// @Tags voice
// @Produce json
// @Param session_id path int true "Sesion"
// @Success 200 {object} dto.CerrarSesionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/voice/sessions/{session_id}/close [post]
func (h *AsistenteHandler) CerrarSesion(c *gin.Context) {
	id, ok := parseUintParam(c, "session_id")
	if !ok {
		return
	}
	resp, err := h.svc.CerrarSesion(c.Request.Context(), usuarioID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func leerAudio(c *gin.Context) (service.AudioEntrada, bool) {
	fh, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("audio_file es requerido"))
		return service.AudioEntrada{}, false
	}
	if fh.Size > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("El archivo de audio supera el limite de 25MB"))
		return service.AudioEntrada{}, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo de audio"))
		return service.AudioEntrada{}, false
	}
	defer f.Close()

	datos, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo de audio"))
		return service.AudioEntrada{}, false
	}
	return service.AudioEntrada{
		Datos:         datos,
		NombreArchivo: fh.Filename,
		ContentType:   fh.Header.Get("Content-Type"),
	}, true
}
