package infra

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGateway uses Whisper for transcription and the chat completions API
// for answers.
type OpenAIGateway struct {
	client   *openai.Client
	model    string
	sttModel string
}

// NewOpenAIGateway targets api.openai.com unless baseURL points at a
// compatible endpoint.
func NewOpenAIGateway(apiKey, baseURL, model, sttModel string) *OpenAIGateway {
	if model == "" {
		model = openai.GPT4oMini
	}
	if sttModel == "" {
		sttModel = openai.Whisper1
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGateway{client: openai.NewClientWithConfig(cfg), model: model, sttModel: sttModel}
}

func (g *OpenAIGateway) Transcribir(ctx context.Context, audio Audio) (string, error) {
	nombre := audio.NombreArchivo
	if nombre == "" {
		nombre = "audio.wav"
	}
	resp, err := g.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    g.sttModel,
		FilePath: nombre,
		Reader:   bytes.NewReader(audio.Datos),
		Language: audio.Idioma,
	})
	if err != nil {
		return "", fmt.Errorf("openai: transcription: %w", err)
	}
	// silence is a valid answer; the caller decides what an empty transcript means
	return strings.TrimSpace(resp.Text), nil
}

func (g *OpenAIGateway) Completar(ctx context.Context, req Completion) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Sistema},
			{Role: openai.ChatMessageRoleUser, Content: req.Usuario},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperatura,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrRespuestaVacia
	}
	return resp.Choices[0].Message.Content, nil
}
