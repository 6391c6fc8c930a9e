package factory

import (
	"fmt"

	"github.com/nitishkumarnitc/HealthBot/pkg/llm"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm/ollama"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, openaiAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(openaiAPIKey, "", modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
