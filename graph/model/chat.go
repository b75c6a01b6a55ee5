// Package model provides LLM chat adapters used by nodes that generate text.
package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ChatModel is a chat-completion provider.
//
// Implementations convert the messages to the provider's wire format, send
// them, and return the generated text. They must respect ctx cancellation.
//
// Example:
//
//	m := openai.NewChatModel(apiKey, "gpt-4o-mini")
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleSystem, Content: "You tell short jokes."},
//	    {Role: model.RoleUser, Content: "Tell me a joke in German."},
//	})
type ChatModel interface {
	Chat(ctx context.Context, messages []Message) (ChatOut, error)
}

// Message is one turn of a conversation.
type Message struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role    string
	Content string
}

// Standard roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatOut is a provider response.
type ChatOut struct {
	Text string

	// InputTokens and OutputTokens report usage when the provider returns it.
	InputTokens  int
	OutputTokens int
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// APIError wraps a provider failure with its HTTP status when known.
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient (rate limit or
// server-side error) so that asking again later may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// SplitSystem joins every system message into one prompt and returns the
// remaining conversation. Providers that take the system prompt as a separate
// parameter use it.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		rest = append(rest, msg)
	}
	return strings.Join(system, "\n\n"), rest
}
