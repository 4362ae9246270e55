package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request is a single text-generation call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Generator produces raw text from a prompt. Implementations are built once
// and shared by every request, so they must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

// ParseProvider maps a provider name, including the "hf" shorthand, onto one
// of the Provider constants.
func ParseProvider(name string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case ProviderGemini, ProviderOpenAI, ProviderHuggingFace:
		return p, nil
	case "hf":
		return ProviderHuggingFace, nil
	default:
		return "", fmt.Errorf("unknown model provider %q", name)
	}
}

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// New builds the Generator for cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	provider, err := ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var gen Generator
	switch provider {
	case ProviderGemini:
		gen, err = NewGemini(ctx, cfg)
	case ProviderOpenAI:
		gen, err = NewOpenAI(cfg)
	case ProviderHuggingFace:
		gen, err = NewHuggingFace(cfg)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(gen, cfg.Timeout), nil
}

type timeoutGenerator struct {
	Generator
	timeout time.Duration
}

// WithTimeout bounds every Generate call on gen by d.
func WithTimeout(gen Generator, d time.Duration) Generator {
	if d <= 0 {
		return gen
	}
	return timeoutGenerator{Generator: gen, timeout: d}
}

func (g timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.Generator.Generate(ctx, req)
}
