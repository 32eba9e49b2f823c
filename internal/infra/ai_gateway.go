package infra

import (
	"context"
	"errors"
	"fmt"

	"panaderia/internal/config"
)

// Audio is the input of a speech-to-text call.
type Audio struct {
	Datos         []byte
	NombreArchivo string
	Idioma        string // ISO-639-1 hint, e.g. "es"
}

// Completion is a single-turn chat completion request.
type Completion struct {
	Sistema     string
	Usuario     string
	MaxTokens   int
	Temperatura float32
}

// AIGateway is the contract of the external transcription and language-model
// providers. Both calls are synchronous; deadlines come from ctx.
type AIGateway interface {
	Transcribir(ctx context.Context, audio Audio) (string, error)
	Completar(ctx context.Context, req Completion) (string, error)
}

// ErrRespuestaVacia is returned when a provider answers without any text.
var ErrRespuestaVacia = errors.New("ai gateway: respuesta vacía del proveedor")

// NewAIGateway builds the provider selected by AI_PROVIDER, wrapped in
// circuit breakers. The returned close func releases provider clients.
func NewAIGateway(ctx context.Context, cfg *config.Config) (*GatewayProtegido, func() error, error) {
	var (
		inner   AIGateway
		closeFn = func() error { return nil }
	)
	switch cfg.AIProvider {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, errors.New("ai gateway: OPENAI_API_KEY no configurada")
		}
		inner = NewOpenAIGateway(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.OpenAISTTModel)
	case "google":
		g, err := NewGoogleGateway(ctx, GoogleGatewayConfig{
			APIKey:          cfg.GeminiAPIKey,
			Model:           cfg.GeminiModel,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			return nil, nil, err
		}
		inner = g
		closeFn = g.Close
	default:
		return nil, nil, fmt.Errorf("ai gateway: proveedor desconocido %q", cfg.AIProvider)
	}

	return NewGatewayProtegido(inner,
		NewCircuitBreaker(DefaultCBConfig("stt")),
		NewCircuitBreaker(DefaultCBConfig("llm")),
	), closeFn, nil
}

// GatewayProtegido routes each operation through its own circuit breaker so a
// failing speech provider does not block completions and vice versa.
type GatewayProtegido struct {
	inner AIGateway
	stt   *CircuitBreaker
	llm   *CircuitBreaker
}

func NewGatewayProtegido(inner AIGateway, stt, llm *CircuitBreaker) *GatewayProtegido {
	return &GatewayProtegido{inner: inner, stt: stt, llm: llm}
}

func (g *GatewayProtegido) Transcribir(ctx context.Context, audio Audio) (string, error) {
	var texto string
	err := g.stt.Execute(func() error {
		var err error
		texto, err = g.inner.Transcribir(ctx, audio)
		return err
	})
	return texto, err
}

func (g *GatewayProtegido) Completar(ctx context.Context, req Completion) (string, error) {
	var texto string
	err := g.llm.Execute(func() error {
		var err error
		texto, err = g.inner.Completar(ctx, req)
		return err
	})
	return texto, err
}

// Estados reports breaker states for the health endpoint.
func (g *GatewayProtegido) Estados() map[string]string {
	return map[string]string{
		"stt": g.stt.State().String(),
		"llm": g.llm.State().String(),
	}
}
