package factory

import (
	"fmt"

	"medlit-rag-be/pkg/llm"
	"medlit-rag-be/pkg/llm/ollama"
	"medlit-rag-be/pkg/llm/upstage"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "upstage":
		return upstage.NewUpstageProvider(apiKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
