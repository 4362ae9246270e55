package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/huggingface"
)

const (
	defaultHuggingFaceURL   = "https://api-inference.huggingface.co"
	defaultHuggingFaceModel = "dfurman/CalmeRys-78B-Orpo-v0.1"
)

// HuggingFace calls the text-generation task of the Hugging Face inference API.
type HuggingFace struct {
	llm   *huggingface.LLM
	model string
}

func NewHuggingFace(cfg Config) (*HuggingFace, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hugging face API token is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultHuggingFaceURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultHuggingFaceModel
	}

	llm, err := huggingface.New(
		huggingface.WithToken(cfg.APIKey),
		huggingface.WithModel(model),
		huggingface.WithURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create hugging face client: %w", err)
	}
	return &HuggingFace{llm: llm, model: model}, nil
}

// Generate sends the system and user prompts as a single input. The inference
// API echoes the input by default, so a leading copy of it is stripped.
func (h *HuggingFace) Generate(ctx context.Context, req Request) (string, error) {
	inputs := req.Prompt
	if req.System != "" {
		inputs = req.System + "\n\n" + req.Prompt
	}

	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxLength(req.MaxTokens))
	}

	resp, err := h.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, inputs),
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("hugging face generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("hugging face response missing choices")
	}
	text := strings.TrimSpace(strings.TrimPrefix(resp.Choices[0].Content, inputs))
	if text == "" {
		return "", fmt.Errorf("hugging face returned an empty response")
	}
	return text, nil
}

func (h *HuggingFace) Name() string {
	return h.model
}
