// Package agent drives the system under test. The default implementation
// talks to an OpenAI-compatible endpoint through the provider layer, but
// anything that can reset and exchange messages satisfies Agent.
package agent

import (
	"context"
	"fmt"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/conversation"
	"github.com/Liquescent-Development/mcprobe/internal/provider"
)

// Reply is one agent response to a user message.
type Reply struct {
	Message    string
	ToolCalls  []conversation.ToolCall
	TokensUsed int
}

// Agent is the system under test.
type Agent interface {
	// Reset clears any conversation state so a fresh scenario can start.
	Reset(ctx context.Context) error
	// Send delivers one user message and returns the agent's reply.
	Send(ctx context.Context, message string) (*Reply, error)
	// Model reports the model identifier used, for result records.
	Model() string
}

const defaultSystemPrompt = `You are a helpful assistant. Answer the user's questions accurately and concisely. If information is missing, ask for it rather than guessing.`

// LLMAgent is a plain chat agent backed by a provider. It keeps the
// running conversation so each Send sees the full history.
type LLMAgent struct {
	provider provider.Provider
	model    config.Model
	messages []provider.Message
}

// NewLLMAgent returns an agent backed by p using the given model settings.
func NewLLMAgent(p provider.Provider, model config.Model) *LLMAgent {
	a := &LLMAgent{provider: p, model: model}
	a.resetMessages()
	return a
}

func (a *LLMAgent) resetMessages() {
	a.messages = []provider.Message{{Role: "system", Content: defaultSystemPrompt}}
}

// Reset discards the conversation history.
func (a *LLMAgent) Reset(ctx context.Context) error {
	a.resetMessages()
	return nil
}

// Model returns the configured model name.
func (a *LLMAgent) Model() string { return a.model.Model }

// Send appends the user message, requests a completion, and records the
// assistant reply in the history.
func (a *LLMAgent) Send(ctx context.Context, message string) (*Reply, error) {
	a.messages = append(a.messages, provider.Message{Role: "user", Content: message})
	resp, err := a.provider.Chat(ctx, &provider.Request{
		Model:       a.model.Model,
		Messages:    a.messages,
		Temperature: a.model.Temperature,
		MaxTokens:   a.model.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("agent chat: %w", err)
	}
	a.messages = append(a.messages, provider.Message{Role: "assistant", Content: resp.Content})
	return &Reply{Message: resp.Content, TokensUsed: resp.TokensUsed}, nil
}
