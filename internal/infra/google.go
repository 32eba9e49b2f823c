package infra

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GoogleGatewayConfig struct {
	APIKey          string // Gemini
	Model           string
	CredentialsFile string // service account for Cloud Speech
}

// GoogleGateway uses Cloud Speech-to-Text and Gemini.
// Cloud Speech reads encoding and sample rate from WAV/FLAC headers, so the
// uploaded audio must be in one of those containers.
type GoogleGateway struct {
	genai  *genai.Client
	speech *speech.Client
	model  string
}

func NewGoogleGateway(ctx context.Context, cfg GoogleGatewayConfig) (*GoogleGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google: GEMINI_API_KEY no configurada")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("google: gemini client: %w", err)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	sc, err := speech.NewClient(ctx, opts...)
	if err != nil {
		gc.Close()
		return nil, fmt.Errorf("google: speech client: %w", err)
	}
	return &GoogleGateway{genai: gc, speech: sc, model: cfg.Model}, nil
}

func (g *GoogleGateway) Transcribir(ctx context.Context, audio Audio) (string, error) {
	resp, err := g.speech.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			LanguageCode:      codigoIdioma(audio.Idioma),
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio.Datos},
		},
	})
	if err != nil {
		return "", fmt.Errorf("google: speech recognize: %w", err)
	}

	return textoReconocido(resp), nil
}

// textoReconocido joins the best alternative of every result. No results
// (silence) yields "".
func textoReconocido(resp *speechpb.RecognizeResponse) string {
	var sb strings.Builder
	for _, result := range resp.GetResults() {
		if len(result.Alternatives) > 0 {
			sb.WriteString(result.Alternatives[0].Transcript)
			sb.WriteString(" ")
		}
	}
	return strings.TrimSpace(sb.String())
}

func (g *GoogleGateway) Completar(ctx context.Context, req Completion) (string, error) {
	// A fresh model per call: GenerativeModel settings are not goroutine-safe.
	model := g.genai.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Sistema)}}
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.SetTemperature(req.Temperatura)

	resp, err := model.GenerateContent(ctx, genai.Text(req.Usuario))
	if err != nil {
		return "", fmt.Errorf("google: gemini generate: %w", err)
	}
	return textoCandidato(resp)
}

// textoCandidato concatenates the text parts of the first candidate.
func textoCandidato(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrRespuestaVacia
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrRespuestaVacia
	}
	return sb.String(), nil
}

func (g *GoogleGateway) Close() error {
	serr := g.speech.Close()
	if err := g.genai.Close(); err != nil {
		return err
	}
	return serr
}

// codigoIdioma maps an ISO-639-1 hint to the BCP-47 tag Cloud Speech expects.
func codigoIdioma(idioma string) string {
	if idioma == "" || idioma == "es" {
		return "es-PE"
	}
	return idioma
}
