package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// NewClient builds the LLM client selected by cfg.Provider
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	opts := Options{
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	switch strings.ToLower(cfg.Provider) {
	case "groq":
		if opts.BaseURL == "" {
			opts.BaseURL = GroqBaseURL
		}
		return NewOpenAIClient(cfg.APIKey, opts), nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, opts), nil

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1 and ignores the key
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		opts.BaseURL = baseURL
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIClient(apiKey, opts), nil

	case "claude":
		return NewClaudeClient(cfg.APIKey, opts), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, opts)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
