package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string
}

// ToolProperty describes one parameter of a tool in JSON-schema terms.
type ToolProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDecl declares a callable tool to the model.
type ToolDecl struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Properties  map[string]ToolProperty `json:"properties"`
	Required    []string                `json:"required,omitempty"`
}

// ToolCall is a single tool invocation requested by the model.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Completion is the result of one model invocation. A completion carries
// either reply text, tool calls, or both.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

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

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// Invoke sends a chat history plus tool declarations and returns the
	// completion, including any tool calls the model requested.
	Invoke(ctx context.Context, history []Message, tools []ToolDecl, options ...Option) (*Completion, error)
}

// VisionProvider analyzes an image and returns a textual description.
// Implemented by providers with multimodal support.
type VisionProvider interface {
	Describe(ctx context.Context, imageURL string, instruction string) (string, error)
}
