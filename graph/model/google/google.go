// Package google adapts the Gemini API to model.ChatModel.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/jokegraph/graph/model"
)

// DefaultModel is used when NewChatModel is given an empty model name.
const DefaultModel = "gemini-1.5-flash"

// SafetyFilterError reports a response withheld by Gemini's safety filters.
type SafetyFilterError struct {
	Reason string
}

func (e *SafetyFilterError) Error() string {
	return "google: response blocked by safety filter: " + e.Reason
}

// ChatModel implements model.ChatModel for Gemini models. Call Close when done.
type ChatModel struct {
	modelName string
	client    contentClient
}

// contentClient sends one chat turn; tests replace it.
type contentClient interface {
	generate(ctx context.Context, modelName, system string, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error)
	close() error
}

type sdkClient struct {
	client *genai.Client
}

func (c *sdkClient) generate(ctx context.Context, modelName, system string, history []*genai.Content, prompt string) (*genai.GenerateContentResponse, error) {
	gm := c.client.GenerativeModel(modelName)
	if system != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	session := gm.StartChat()
	session.History = history
	return session.SendMessage(ctx, genai.Text(prompt))
}

func (c *sdkClient) close() error {
	return c.client.Close()
}

// NewChatModel creates a ChatModel backed by a Gemini API client.
func NewChatModel(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*ChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("google: create client: %w", err)
	}
	return &ChatModel{modelName: modelName, client: &sdkClient{client: client}}, nil
}

// Close releases the underlying client.
func (m *ChatModel) Close() error {
	return m.client.close()
}

// Chat implements model.ChatModel. The last message is sent as the new turn
// and everything before it becomes the chat history.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	system, conversation := model.SplitSystem(messages)
	if len(conversation) == 0 {
		return model.ChatOut{}, errors.New("google: at least one user message is required")
	}
	last := conversation[len(conversation)-1]
	history := make([]*genai.Content, 0, len(conversation)-1)
	for _, msg := range conversation[:len(conversation)-1] {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}

	resp, err := m.client.generate(ctx, m.modelName, system, history, last.Content)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.ChatOut{}, err
		}
		return model.ChatOut{}, &model.APIError{Provider: "google", Err: err}
	}
	return convertResponse(resp)
}

func convertResponse(resp *genai.GenerateContentResponse) (model.ChatOut, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return model.ChatOut{}, &SafetyFilterError{Reason: resp.PromptFeedback.BlockReason.String()}
		}
		return model.ChatOut{}, model.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return model.ChatOut{}, &SafetyFilterError{Reason: candidate.FinishReason.String()}
	}

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	if text.Len() == 0 {
		return model.ChatOut{}, model.ErrEmptyResponse
	}

	out := model.ChatOut{Text: text.String()}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
