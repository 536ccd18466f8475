package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/jamesruggles/secuscan/internal/model"
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Gemini generates scan reports with the Gemini API.
type Gemini struct {
	generate    generateFunc
	enricher    Enricher
	model       string
	temperature float32
}

func NewGemini(ctx context.Context, apiKey, modelName string, temperature float32, enricher Enricher) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{
		generate:    client.Models.GenerateContent,
		enricher:    enricher,
		model:       modelName,
		temperature: temperature,
	}, nil
}

// GenerateReport enriches the target, prompts the model with the response
// schema and parses the result.
func (g *Gemini) GenerateReport(ctx context.Context, req model.ScanRequest) (*model.PartialResult, error) {
	info := g.enricher.Lookup(ctx, req.Target)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(req, info), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResponseSchema(),
		Temperature:       genai.Ptr(g.temperature),
	}

	start := time.Now()
	resp, err := g.generate(ctx, g.model, genai.Text(UserPrompt(req, info)), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	slog.Debug("model responded", "target", req.Target, "model", g.model, "duration", time.Since(start))

	if resp == nil {
		return nil, ErrEmptyResponse
	}
	return ParseReport(resp.Text())
}
