package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any text-generation backend. A single
// instance is shared across the whole service and must be safe for concurrent
// use; it is injected explicitly, never reached through a global.
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the raw response text
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends one system instruction plus one user instruction
	// (convenience for the single-turn calls this service makes)
	Generate(ctx context.Context, system, user string, options ...Option) (string, error)
}
