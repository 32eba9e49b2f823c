package router

import (
	"time"

	"panaderia/internal/config"
	"panaderia/internal/handler"
	"panaderia/internal/infra"
	"panaderia/internal/middleware"
	"panaderia/internal/model"
	"panaderia/internal/repository"
	"panaderia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const insightsCachePrefix = "panaderia:insights:"

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/AI gateway.
// rdb may be nil; insight caching is then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gateway *infra.GatewayProtegido) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewRateLimiter(1000, 100, middleware.ByIP, "Demasiadas solicitudes. Intente nuevamente en un momento.")
	loginLimiter := middleware.NewRateLimiter(20, 5, middleware.ByIP, "Demasiados intentos de login. Intente en 1 minuto.")
	aiLimiter := middleware.NewRateLimiter(cfg.AIRatePerMinute, cfg.AIRatePerMinute, middleware.ByUser, "Demasiadas consultas al asistente. Intente en 1 minuto.")
	for _, rl := range []*middleware.RateLimiter{apiLimiter, loginLimiter, aiLimiter} {
		rl.StartPurge(5*time.Minute, nil)
	}

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	metricasRepo := repository.NewMetricasRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var cache service.Cache
	if rdb != nil {
		cache = infra.NewRedisCache(rdb, insightsCachePrefix)
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	analiticaSvc := service.NewAnaliticaService(metricasRepo, loc)
	asistenteSvc := service.NewAsistenteService(service.AsistenteDeps{
		Chat:      chatRepo,
		Usuarios:  usuarioRepo,
		Analitica: analiticaSvc,
		Gateway:   gateway,
		Config: service.AsistenteConfig{
			MaxTokens:            cfg.AIMaxTokens,
			Temperatura:          cfg.AITemperature,
			TimeoutTranscripcion: cfg.TranscriptionTimeout(),
			TimeoutCompletado:    cfg.CompletionTimeout(),
			Idioma:               cfg.STTLanguage,
			Location:             loc,
		},
	})
	insightsSvc := service.NewInsightsService(metricasRepo, analiticaSvc, gateway, cache, service.InsightsConfig{
		MaxTokens:   cfg.AIInsightsMaxTokens,
		Temperatura: cfg.AITemperature,
		Timeout:     cfg.CompletionTimeout(),
		CacheTTL:    time.Duration(cfg.InsightsCacheMinutes) * time.Minute,
		Location:    loc,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	asistenteH := handler.NewAsistenteHandler(asistenteSvc)
	analiticaH := handler.NewAnaliticaHandler(analiticaSvc, insightsSvc, loc)

	// ── Public routes ────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, gateway.Estados))
	r.POST("/v1/auth/login", loginLimiter.Middleware(), authH.Login)

	// ── Protected routes ─────────────────────────────────────────────────────
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	todos := middleware.RequireRole(model.RolAdmin, model.RolUsuario)
	admin := middleware.RequireRole(model.RolAdmin)

	voice := v1.Group("/voice", todos)
	{
		voice.POST("/transcribe", aiLimiter.Middleware(), asistenteH.Transcribir)
		voice.POST("/query", aiLimiter.Middleware(), asistenteH.Consultar)
		voice.POST("/chat", aiLimiter.Middleware(), asistenteH.Chat)
		voice.GET("/history/:session_id", asistenteH.Historial)
		voice.GET("/sessions", asistenteH.Sesiones)
		voice.POST("/sessions/:session_id/close", asistenteH.CerrarSesion)
	}

	ai := v1.Group("/ai", todos)
	{
		ai.GET("/snapshot", analiticaH.Snapshot)
		ai.GET("/product-analysis/:product_id", aiLimiter.Middleware(), analiticaH.AnalisisProducto)
		ai.GET("/snapshot/pdf", admin, analiticaH.SnapshotPDF)
		ai.GET("/business-insights", admin, aiLimiter.Middleware(), analiticaH.BusinessInsights)
		ai.GET("/daily-summary", admin, aiLimiter.Middleware(), analiticaH.ResumenDiario)
	}

	return r
}
