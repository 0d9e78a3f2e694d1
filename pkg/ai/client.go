package ai

import (
	"context"
)

// LLMClient wraps a single text-completion call. Implementations do not retry;
// network failures and non-2xx responses are returned as errors.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options are shared by every provider
type Options struct {
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

const (
	DefaultTemperature float32 = 0.3
	DefaultMaxTokens           = 2000
)

func (o Options) withDefaults() Options {
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
