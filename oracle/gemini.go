package oracle

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Generator produces the raw JSON answer for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a client for the Gemini developer API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64, timeout time.Duration) (*GeminiGenerator, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cc.HTTPOptions.Timeout = &timeout
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, temperature: float32(temperature)}, nil
}

// Generate sends one JSON-constrained request.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
