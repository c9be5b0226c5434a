// Package llm implements the language-model-backed capabilities: the text
// oracle (change explanation, classification, summaries) and the embedding
// similarity scorer.  Both talk to any OpenAI-compatible endpoint; the
// default deployment points at a local Ollama server's /v1 API.
package llm

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/policylens/internal/config"
)

// NewClient builds an OpenAI-compatible API client from the platform LLM
// configuration.  Ollama ignores the API key but the client library requires
// a non-empty one.
func NewClient(cfg config.LLMConfig) *openai.Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
