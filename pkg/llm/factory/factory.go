package factory

import (
	"fmt"

	"chat-agent-be/pkg/llm"
	"chat-agent-be/pkg/llm/gemini"
	"chat-agent-be/pkg/llm/ollama"
)

// NewLLMProvider creates the configured LLM backend.
func NewLLMProvider(providerType, model, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", providerType)
	}
}
