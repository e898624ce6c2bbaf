// Package textgen produces short natural-language notes from prompts.
package textgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Generator turns a prompt into text. Failures wrap domain.ErrGeneration.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Settings are shared by every provider.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// New builds the generator for provider.
func New(ctx context.Context, provider, apiKey, baseURL string, s Settings) (Generator, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return NewOpenAI(baseURL, apiKey, s), nil
	case ProviderGemini:
		return NewGemini(ctx, apiKey, s)
	case ProviderNone, "":
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown text generation provider %q", provider)
	}
}

// None is used when generation is disabled; every call fails.
type None struct{}

func (None) Generate(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: text generation is disabled", domain.ErrGeneration)
}

// withTimeout bounds ctx by d unless the caller already set a deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func generationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrGeneration, fmt.Sprintf(format, args...))
}
