package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Skufu/GoSintomas/internal/model"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	EnableDB    bool
	MaxAttempts int
	Model       model.Config
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		EnableDB:    strings.EqualFold(getEnv("ENABLE_DB", "false"), "true"),
		Model: model.Config{
			Provider: getEnv("MODEL_PROVIDER", model.ProviderHuggingFace),
			Model:    os.Getenv("MODEL_NAME"),
			BaseURL:  os.Getenv("MODEL_BASE_URL"),
		},
	}

	if cfg.EnableDB && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when ENABLE_DB=true")
	}

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", "60s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("MODEL_TIMEOUT must be a positive duration, got %q", os.Getenv("MODEL_TIMEOUT"))
	}
	cfg.Model.Timeout = timeout

	attempts, err := strconv.Atoi(getEnv("MODEL_MAX_ATTEMPTS", "2"))
	if err != nil || attempts < 1 {
		return nil, fmt.Errorf("MODEL_MAX_ATTEMPTS must be a positive integer, got %q", os.Getenv("MODEL_MAX_ATTEMPTS"))
	}
	cfg.MaxAttempts = attempts

	provider, err := model.ParseProvider(cfg.Model.Provider)
	if err != nil {
		return nil, fmt.Errorf("unsupported MODEL_PROVIDER %q", cfg.Model.Provider)
	}
	cfg.Model.Provider = provider

	switch provider {
	case model.ProviderGemini:
		cfg.Model.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.Model.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when MODEL_PROVIDER=gemini")
		}
	case model.ProviderOpenAI:
		cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Model.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when MODEL_PROVIDER=openai")
		}
	case model.ProviderHuggingFace:
		cfg.Model.APIKey = os.Getenv("HF_API_TOKEN")
		if cfg.Model.APIKey == "" {
			return nil, fmt.Errorf("HF_API_TOKEN is required when MODEL_PROVIDER=huggingface")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
