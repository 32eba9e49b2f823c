package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"panaderia/internal/dto"
	"panaderia/internal/infra"
	"panaderia/internal/model"
	"panaderia/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	HistorialLimitePorDefecto = 20
	SesionesLimitePorDefecto  = 10
	maxLimite                 = 100

	maxErrorMensaje = 500
	// bytes per second assumed when estimating audio length (16 kHz, 8-bit mono).
	bytesPorSegundoAudio = 16000
)

// AudioEntrada is an uploaded audio file.
type AudioEntrada struct {
	Datos         []byte
	NombreArchivo string
	ContentType   string
}

// AsistenteService is the conversational session manager. Session identity is
// always explicit: (sessionID?, usuarioID) -> session.
type AsistenteService interface {
	Transcribir(ctx context.Context, usuarioID uint, audio AudioEntrada) (*dto.TranscripcionResponse, error)
	ProcesarConsulta(ctx context.Context, usuarioID uint, req dto.ConsultaRequest) (*dto.ConsultaResponse, error)
	ProcesarVoz(ctx context.Context, usuarioID uint, sessionID *uint, audio AudioEntrada) (*dto.VozChatResponse, error)
	Historial(ctx context.Context, usuarioID, sessionID uint, limit int) (*dto.HistorialResponse, error)
	ListarSesiones(ctx context.Context, usuarioID uint, soloActivas bool, limit int) (*dto.SesionesResponse, error)
	CerrarSesion(ctx context.Context, usuarioID, sessionID uint) (*dto.CerrarSesionResponse, error)
}

type AsistenteConfig struct {
	MaxTokens            int
	Temperatura          float32
	TimeoutTranscripcion time.Duration
	TimeoutCompletado    time.Duration
	Idioma               string
	VentanaDias          int
	Location             *time.Location
}

type AsistenteDeps struct {
	Chat         repository.ChatRepository
	Usuarios     repository.UsuarioRepository
	Analitica    AnaliticaService
	Gateway      infra.AIGateway
	Clasificador *Clasificador
	Config       AsistenteConfig
	// Now defaults to time.Now.
	Now func() time.Time
}

type asistenteService struct {
	chat         repository.ChatRepository
	usuarios     repository.UsuarioRepository
	analitica    AnaliticaService
	gateway      infra.AIGateway
	clasificador *Clasificador
	cfg          AsistenteConfig
	now          func() time.Time
}

func NewAsistenteService(d AsistenteDeps) AsistenteService {
	if d.Clasificador == nil {
		d.Clasificador = NewClasificador(ReglasPorDefecto())
	}
	if d.Config.VentanaDias == 0 {
		d.Config.VentanaDias = VentanaContextoDias
	}
	if d.Config.TimeoutTranscripcion <= 0 {
		d.Config.TimeoutTranscripcion = 30 * time.Second
	}
	if d.Config.TimeoutCompletado <= 0 {
		d.Config.TimeoutCompletado = 30 * time.Second
	}
	if d.Config.Location == nil {
		d.Config.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &asistenteService{
		chat:         d.Chat,
		usuarios:     d.Usuarios,
		analitica:    d.Analitica,
		gateway:      d.Gateway,
		clasificador: d.Clasificador,
		cfg:          d.Config,
		now:          d.Now,
	}
}

// ─── Transcription ───────────────────────────────────────────────────────────

func (s *asistenteService) Transcribir(ctx context.Context, usuarioID uint, audio AudioEntrada) (*dto.TranscripcionResponse, error) {
	if err := validarAudio(audio); err != nil {
		return nil, err
	}
	if _, err := s.buscarUsuario(ctx, usuarioID); err != nil {
		return nil, err
	}

	texto, ms, err := s.transcribir(ctx, audio)
	if err != nil {
		return nil, err
	}
	return &dto.TranscripcionResponse{
		Success:         true,
		Transcription:   texto,
		Language:        s.cfg.Idioma,
		ExecutionTimeMs: ms,
		AudioDuration:   len(audio.Datos) / bytesPorSegundoAudio,
	}, nil
}

// transcribir runs the speech-to-text stage with its own deadline and timing.
func (s *asistenteService) transcribir(ctx context.Context, audio AudioEntrada) (string, int64, error) {
	inicio := s.now()
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TimeoutTranscripcion)
	defer cancel()

	texto, err := s.gateway.Transcribir(callCtx, infra.Audio{
		Datos:         audio.Datos,
		NombreArchivo: audio.NombreArchivo,
		Idioma:        s.cfg.Idioma,
	})
	ms := s.now().Sub(inicio).Milliseconds()
	if err != nil {
		log.Warn().Err(err).Int64("execution_time_ms", ms).Msg("asistente: transcripcion fallida")
		return "", ms, &FalloConsulta{
			Tipo:            ErrGatewayFailure,
			Mensaje:         "Error en transcripción",
			ExecutionTimeMs: ms,
			Err:             err,
		}
	}
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return "", ms, &FalloConsulta{
			Tipo:            ErrInvalidInput,
			Mensaje:         "No se detectó voz en el audio",
			ExecutionTimeMs: ms,
		}
	}
	return texto, ms, nil
}

func validarAudio(audio AudioEntrada) error {
	if !strings.HasPrefix(audio.ContentType, "audio/") {
		return entradaInvalida("El archivo debe ser de audio")
	}
	if len(audio.Datos) == 0 {
		return entradaInvalida("El archivo de audio está vacío")
	}
	return nil
}

// ─── Query pipeline ──────────────────────────────────────────────────────────

type consulta struct {
	usuario       *model.Usuario
	sessionID     *uint
	texto         string
	transcripcion string
	// previoMs is time already spent in earlier stages of the same turn.
	previoMs int64
}

type resultado struct {
	sesion    *model.ChatSession
	tipo      string
	respuesta string
	ms        int64
}

func (s *asistenteService) ProcesarConsulta(ctx context.Context, usuarioID uint, req dto.ConsultaRequest) (*dto.ConsultaResponse, error) {
	texto := strings.TrimSpace(req.Query)
	if texto == "" {
		return nil, entradaInvalida("La consulta está vacía")
	}
	u, err := s.buscarUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	res, err := s.procesar(ctx, consulta{usuario: u, sessionID: req.SessionID, texto: texto})
	if err != nil {
		return nil, err
	}
	return &dto.ConsultaResponse{
		Success:         true,
		Query:           texto,
		Response:        res.respuesta,
		QueryType:       res.tipo,
		SessionID:       res.sesion.ID,
		ExecutionTimeMs: res.ms,
	}, nil
}

func (s *asistenteService) ProcesarVoz(ctx context.Context, usuarioID uint, sessionID *uint, audio AudioEntrada) (*dto.VozChatResponse, error) {
	if err := validarAudio(audio); err != nil {
		return nil, err
	}
	u, err := s.buscarUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	texto, msTranscripcion, err := s.transcribir(ctx, audio)
	if err != nil {
		return nil, err
	}

	res, err := s.procesar(ctx, consulta{
		usuario:       u,
		sessionID:     sessionID,
		texto:         texto,
		transcripcion: texto,
		previoMs:      msTranscripcion,
	})
	if err != nil {
		return nil, err
	}
	return &dto.VozChatResponse{
		Success:             true,
		Transcription:       texto,
		TranscriptionTimeMs: msTranscripcion,
		Query:               texto,
		Response:            res.respuesta,
		QueryType:           res.tipo,
		SessionID:           res.sesion.ID,
		TotalTimeMs:         res.ms,
	}, nil
}

// procesar resolves the session, builds the context, calls the language model
// and records the outcome. Once a session is attributed, every failure is
// logged as a VoiceQuery with success=false and returned as *FalloConsulta.
func (s *asistenteService) procesar(ctx context.Context, c consulta) (*resultado, error) {
	inicio := s.now()
	transcurrido := func() int64 { return c.previoMs + s.now().Sub(inicio).Milliseconds() }

	sesion, err := s.resolverSesion(ctx, c.usuario.ID, c.sessionID)
	if err != nil {
		return nil, &FalloConsulta{
			Tipo:            ErrStoreFailure,
			Mensaje:         "Error iniciando sesión de chat",
			ExecutionTimeMs: transcurrido(),
			Err:             err,
		}
	}

	tipo := s.clasificador.Clasificar(c.texto)
	q := &model.VoiceQuery{
		ChatSessionID:      sesion.ID,
		UsuarioID:          c.usuario.ID,
		AudioTranscription: c.transcripcion,
		UserQuery:          c.texto,
		QueryType:          tipo,
	}

	snap, err := s.analitica.CalcularSnapshot(ctx, s.cfg.VentanaDias)
	if err != nil {
		return nil, s.fallar(ctx, q, transcurrido(), ErrStoreFailure, "Error obteniendo datos del negocio", err)
	}
	contexto := RenderContexto(snap, c.usuario, s.now())

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TimeoutCompletado)
	defer cancel()
	respuesta, err := s.gateway.Completar(callCtx, infra.Completion{
		Sistema:     PromptSistema(contexto),
		Usuario:     MejorarConsulta(c.texto, tipo),
		MaxTokens:   s.cfg.MaxTokens,
		Temperatura: s.cfg.Temperatura,
	})
	ms := transcurrido()
	if err != nil {
		return nil, s.fallar(ctx, q, ms, ErrGatewayFailure, "Error procesando consulta", err)
	}

	q.AIResponse = respuesta
	q.ExecutionTimeMs = ms
	q.Success = true
	q.Fecha = s.now()
	if err := s.chat.RegistrarConsulta(context.WithoutCancel(ctx), q); err != nil {
		return nil, &FalloConsulta{
			Tipo:            ErrStoreFailure,
			Mensaje:         "Error registrando la consulta",
			ExecutionTimeMs: ms,
			SessionID:       sesion.ID,
			Err:             err,
		}
	}

	log.Info().
		Uint("session_id", sesion.ID).
		Uint("usuario_id", c.usuario.ID).
		Str("query_type", tipo).
		Int64("execution_time_ms", ms).
		Msg("asistente: consulta procesada")

	return &resultado{sesion: sesion, tipo: tipo, respuesta: respuesta, ms: ms}, nil
}

// fallar records a failed attempt and returns the original cause. Errors while
// recording are logged and dropped so they never replace the primary error.
func (s *asistenteService) fallar(ctx context.Context, q *model.VoiceQuery, ms int64, tipo error, mensaje string, causa error) error {
	q.ExecutionTimeMs = ms
	q.Success = false
	q.Fecha = s.now()
	detalle := truncar(causa.Error(), maxErrorMensaje)
	q.ErrorMessage = &detalle

	logCtx := context.WithoutCancel(ctx)
	if err := s.chat.IncrementarConsultas(logCtx, q.ChatSessionID); err != nil {
		log.Warn().Err(err).Uint("session_id", q.ChatSessionID).Msg("asistente: no se pudo incrementar el contador de la sesión")
	}
	if err := s.chat.CreateVoiceQuery(logCtx, q); err != nil {
		log.Warn().Err(err).Uint("session_id", q.ChatSessionID).Msg("asistente: no se pudo registrar la consulta fallida")
	}

	log.Error().
		Err(causa).
		Uint("session_id", q.ChatSessionID).
		Str("query_type", q.QueryType).
		Int64("execution_time_ms", ms).
		Msg("asistente: consulta fallida")

	return &FalloConsulta{
		Tipo:            tipo,
		Mensaje:         mensaje,
		ExecutionTimeMs: ms,
		SessionID:       q.ChatSessionID,
		Err:             causa,
	}
}

// resolverSesion returns the caller's active session with the given id, or a
// brand-new one when the id is absent, closed or owned by someone else.
func (s *asistenteService) resolverSesion(ctx context.Context, usuarioID uint, sessionID *uint) (*model.ChatSession, error) {
	if sessionID != nil && *sessionID > 0 {
		sesion, err := s.chat.FindSesionActiva(ctx, *sessionID, usuarioID)
		if err == nil {
			return sesion, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	sesion := &model.ChatSession{
		UsuarioID:     usuarioID,
		SessionStart:  s.now(),
		TotalQueries:  0,
		SessionActive: true,
	}
	if err := s.chat.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}
	log.Debug().Uint("session_id", sesion.ID).Uint("usuario_id", usuarioID).Msg("asistente: sesión creada")
	return sesion, nil
}

// ─── Session projections ─────────────────────────────────────────────────────

func (s *asistenteService) Historial(ctx context.Context, usuarioID, sessionID uint, limit int) (*dto.HistorialResponse, error) {
	sesion, err := s.chat.FindSesion(ctx, sessionID, usuarioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, noEncontrado("Sesión no encontrada")
		}
		return nil, storeErr("buscar sesión", err)
	}

	queries, err := s.chat.ListVoiceQueries(ctx, sesion.ID, normalizarLimite(limit, HistorialLimitePorDefecto))
	if err != nil {
		return nil, storeErr("listar consultas", err)
	}

	// stored newest first; the conversation reads oldest first
	items := make([]dto.HistorialItem, len(queries))
	for i, q := range queries {
		items[len(queries)-1-i] = dto.HistorialItem{
			QueryID:         q.ID,
			Transcription:   q.AudioTranscription,
			Query:           q.UserQuery,
			Response:        q.AIResponse,
			QueryType:       q.QueryType,
			Timestamp:       s.formatear(q.Fecha),
			ExecutionTimeMs: q.ExecutionTimeMs,
			Success:         q.Success,
		}
	}

	return &dto.HistorialResponse{
		Success: true,
		SessionInfo: dto.SesionInfo{
			SessionID:    sesion.ID,
			StartTime:    s.formatear(sesion.SessionStart),
			TotalQueries: sesion.TotalQueries,
			Active:       sesion.SessionActive,
		},
		ChatHistory: items,
	}, nil
}

func (s *asistenteService) ListarSesiones(ctx context.Context, usuarioID uint, soloActivas bool, limit int) (*dto.SesionesResponse, error) {
	sesiones, err := s.chat.ListSesiones(ctx, usuarioID, soloActivas, normalizarLimite(limit, SesionesLimitePorDefecto))
	if err != nil {
		return nil, storeErr("listar sesiones", err)
	}

	out := make([]dto.SesionResumen, 0, len(sesiones))
	for _, sd := range sesiones {
		r := dto.SesionResumen{
			SessionID:    sd.ID,
			StartTime:    s.formatear(sd.SessionStart),
			TotalQueries: sd.TotalQueries,
			Active:       sd.SessionActive,
		}
		if sd.SessionEnd != nil {
			fin := s.formatear(*sd.SessionEnd)
			minutos := int(sd.SessionEnd.Sub(sd.SessionStart).Minutes())
			r.EndTime = &fin
			r.DurationMinutes = &minutos
		}
		out = append(out, r)
	}
	return &dto.SesionesResponse{Success: true, Sessions: out}, nil
}

func (s *asistenteService) CerrarSesion(ctx context.Context, usuarioID, sessionID uint) (*dto.CerrarSesionResponse, error) {
	if err := s.chat.CerrarSesion(ctx, sessionID, usuarioID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, noEncontrado("Sesión activa no encontrada")
		}
		return nil, storeErr("cerrar sesión", err)
	}
	return &dto.CerrarSesionResponse{
		Success:   true,
		Message:   "Sesión cerrada exitosamente",
		SessionID: sessionID,
	}, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (s *asistenteService) buscarUsuario(ctx context.Context, id uint) (*model.Usuario, error) {
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, noEncontrado("Usuario no encontrado")
		}
		return nil, storeErr("buscar usuario", err)
	}
	return u, nil
}

func (s *asistenteService) formatear(t time.Time) string {
	return t.In(s.cfg.Location).Format(time.RFC3339)
}

func normalizarLimite(limit, porDefecto int) int {
	if limit <= 0 {
		return porDefecto
	}
	if limit > maxLimite {
		return maxLimite
	}
	return limit
}

func truncar(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
