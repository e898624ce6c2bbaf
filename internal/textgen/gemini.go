package textgen

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini generates text through the Google GenAI API.
type Gemini struct {
	client   *genai.Client
	settings Settings
}

func NewGemini(ctx context.Context, apiKey string, s Settings) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	// the OpenAI default model name means nothing to Gemini
	if s.Model == "" || strings.HasPrefix(s.Model, "gpt-") {
		s.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, settings: s}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.settings.Timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.settings.Temperature)),
		MaxOutputTokens: int32(g.settings.MaxTokens),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.settings.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", generationErr("gemini: %v", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", generationErr("gemini: empty response")
	}
	return text, nil
}
