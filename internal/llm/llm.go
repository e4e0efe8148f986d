package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/a6arsh/Chatbot-yellow/internal/config"
)

// NewClient creates a completion client for one provider tier. The primary
// tier points the OpenAI-compatible client at the Groq endpoint via BaseURL;
// the secondary tier uses the default endpoint.
func NewClient(cfg config.ProviderConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
