package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/dshills/jokegraph/graph/model"
)

type fakeClient struct {
	params   anthropic.MessageNewParams
	response *anthropic.Message
	err      error
	calls    int
}

func (f *fakeClient) createMessage(_ context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	f.calls++
	f.params = params
	return f.response, f.err
}

func textMessage(parts ...string) *anthropic.Message {
	msg := &anthropic.Message{}
	for _, p := range parts {
		msg.Content = append(msg.Content, anthropic.ContentBlockUnion{Type: "text", Text: p})
	}
	msg.Usage.InputTokens = 12
	msg.Usage.OutputTokens = 7
	return msg
}

func TestNewChatModel(t *testing.T) {
	m := NewChatModel("test-key", "")
	if m.modelName != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, m.modelName)
	}
	if NewChatModel("test-key", "claude-x").modelName != "claude-x" {
		t.Error("expected explicit model name to be kept")
	}
}

func TestChat(t *testing.T) {
	fake := &fakeClient{response: textMessage("Why did the ", "gopher cross the road?")}
	m := &ChatModel{modelName: "claude-x", maxTokens: 100, client: fake}

	out, err := m.Chat(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "Tell jokes."},
		{Role: model.RoleUser, Content: "One please."},
		{Role: model.RoleAssistant, Content: "Sure."},
		{Role: model.RoleUser, Content: "Go on."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "Why did the gopher cross the road?" {
		t.Errorf("unexpected text %q", out.Text)
	}
	if out.InputTokens != 12 || out.OutputTokens != 7 {
		t.Errorf("unexpected usage %d/%d", out.InputTokens, out.OutputTokens)
	}

	p := fake.params
	if p.Model != anthropic.Model("claude-x") || p.MaxTokens != 100 {
		t.Errorf("unexpected model params: %v %d", p.Model, p.MaxTokens)
	}
	if len(p.System) != 1 || p.System[0].Text != "Tell jokes." {
		t.Errorf("expected system prompt, got %+v", p.System)
	}
	if len(p.Messages) != 3 {
		t.Fatalf("expected 3 conversation messages, got %d", len(p.Messages))
	}
	if p.Messages[1].Role != anthropic.MessageParamRoleAssistant {
		t.Errorf("expected assistant turn, got %v", p.Messages[1].Role)
	}
}

func TestChat_NoSystemPrompt(t *testing.T) {
	fake := &fakeClient{response: textMessage("ok")}
	m := &ChatModel{modelName: "claude-x", maxTokens: 100, client: fake}

	if _, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.params.System) != 0 {
		t.Errorf("expected no system blocks, got %d", len(fake.params.System))
	}
}

func TestChat_EmptyResponse(t *testing.T) {
	m := &ChatModel{client: &fakeClient{response: &anthropic.Message{}}}
	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.Is(err, model.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestChat_Errors(t *testing.T) {
	boom := errors.New("connection reset")
	m := &ChatModel{client: &fakeClient{err: boom}}

	_, err := m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Provider != "anthropic" || !errors.Is(err, boom) {
		t.Errorf("expected wrapped APIError, got %v", err)
	}

	m = &ChatModel{client: &fakeClient{err: &anthropic.Error{StatusCode: 429}}}
	_, err = m.Chat(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 429 || !apiErr.Retryable() {
		t.Error("expected retryable APIError with status 429")
	}
}

func TestChat_Cancelled(t *testing.T) {
	fake := &fakeClient{response: textMessage("ok")}
	m := &ChatModel{client: fake}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Chat(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("expected no API call, got %d", fake.calls)
	}
}
