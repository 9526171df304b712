// Package synthuser simulates the human side of a test conversation.
// An LLM plays a persona defined in the scenario, supplying the initial
// query and natural follow-up responses to the agent under test.
package synthuser

import (
	"context"
	"fmt"
	"strings"

	"github.com/Liquescent-Development/mcprobe/internal/config"
	"github.com/Liquescent-Development/mcprobe/internal/provider"
	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

// Reply is one synthetic-user message.
type Reply struct {
	Message    string
	TokensUsed int
}

// User is an LLM-backed synthetic user. It keeps the conversation so far
// so each follow-up stays consistent with the persona.
type User struct {
	provider     provider.Provider
	model        config.Model
	scenario     *scenario.SyntheticUser
	systemPrompt string
	history      []provider.Message
}

// New returns a synthetic user for the given scenario configuration.
func New(p provider.Provider, model config.Model, cfg *scenario.SyntheticUser) *User {
	u := &User{
		provider:     p,
		model:        model,
		scenario:     cfg,
		systemPrompt: buildSystemPrompt(cfg),
	}
	u.Reset()
	return u
}

// Reset discards conversation state so the user can start a fresh run.
func (u *User) Reset() {
	u.history = []provider.Message{{Role: "system", Content: u.systemPrompt}}
}

// InitialQuery returns the opening question from the scenario.
func (u *User) InitialQuery() string {
	return u.scenario.InitialQuery
}

// Respond generates the user's reply to an assistant message.
func (u *User) Respond(ctx context.Context, assistantMessage string) (*Reply, error) {
	if strings.TrimSpace(assistantMessage) == "" {
		// An empty agent response would only confuse the persona LLM.
		reply := "I didn't receive a response. Could you try again?"
		u.history = append(u.history,
			provider.Message{Role: "assistant", Content: assistantMessage},
			provider.Message{Role: "user", Content: reply},
		)
		return &Reply{Message: reply}, nil
	}

	u.history = append(u.history, provider.Message{Role: "assistant", Content: assistantMessage})

	resp, err := u.provider.Chat(ctx, &provider.Request{
		Model:       u.model.Model,
		Messages:    u.swappedHistory(),
		Temperature: u.model.Temperature,
		MaxTokens:   u.model.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("synthetic user response: %w", err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		content = "Thanks, that answers my question."
	}
	u.history = append(u.history, provider.Message{Role: "user", Content: content})

	return &Reply{Message: content, TokensUsed: resp.TokensUsed}, nil
}

// swappedHistory flips user and assistant roles so the LLM generates
// from the assistant position. Smaller models slip into assistant
// behavior when asked to complete the user side directly.
func (u *User) swappedHistory() []provider.Message {
	messages := make([]provider.Message, 0, len(u.history))
	for _, msg := range u.history {
		switch msg.Role {
		case "assistant":
			messages = append(messages, provider.Message{Role: "user", Content: msg.Content})
		case "user":
			messages = append(messages, provider.Message{Role: "assistant", Content: msg.Content})
		default:
			messages = append(messages, msg)
		}
	}
	return messages
}
