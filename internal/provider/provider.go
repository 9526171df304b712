// Package provider abstracts the LLM backends used by the judge, the
// synthetic user, and the provider-backed agent.
package provider

import (
	"context"
	"fmt"
	"os"

	"github.com/Liquescent-Development/mcprobe/internal/config"
)

type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	JSONMode    bool // ask the backend for a JSON object response
}

type Response struct {
	Content    string
	TokensUsed int
}

// Provider is a synchronous chat-completion backend.
type Provider interface {
	Name() string
	Chat(ctx context.Context, req *Request) (*Response, error)
}

// New builds the provider configured in the harness config. The OpenAI
// kind reads its key from the configured environment variable, so
// secrets never live in the config file itself.
func New(cfg config.Provider) (Provider, error) {
	switch cfg.Kind {
	case "openai":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("provider openai: environment variable %s is not set", cfg.APIKeyEnv)
		}
		return NewOpenAI(key, cfg.BaseURL), nil
	case "ollama":
		return NewOllama(cfg.BaseURL, nil), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
