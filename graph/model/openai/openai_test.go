package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/jokegraph/graph/model"
)

type fakeClient struct {
	params   openai.ChatCompletionNewParams
	response *openai.ChatCompletion
	err      error
}

func (f *fakeClient) createCompletion(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	f.params = params
	return f.response, f.err
}

func completion(text string) *openai.ChatCompletion {
	c := &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: text}}},
	}
	c.Usage.PromptTokens = 20
	c.Usage.CompletionTokens = 9
	return c
}

func TestNewChatModel(t *testing.T) {
	if m := NewChatModel("test-key", ""); m.modelName != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, m.modelName)
	}
}

func TestChat(t *testing.T) {
	fake := &fakeClient{response: completion("A joke.")}
	m := &ChatModel{modelName: "gpt-x", client: fake}

	out, err := m.Chat(context.Background(), []model.Message{
		{Role: model.RoleSystem, Content: "Tell jokes."},
		{Role: model.RoleUser, Content: "One please."},
		{Role: model.RoleAssistant, Content: "Sure."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text != "A joke." || out.InputTokens != 20 || out.OutputTokens != 9 {
		t.Errorf("unexpected output %+v", out)
	}

	if fake.params.Model != shared.ChatModel("gpt-x") {
		t.Errorf("expected model gpt-x, got %v", fake.params.Model)
	}
	msgs := fake.params.Messages
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil || msgs[1].OfUser == nil || msgs[2].OfAssistant == nil {
		t.Error("expected system, user, assistant message order")
	}
}

func TestChat_EmptyResponse(t *testing.T) {
	for _, resp := range []*openai.ChatCompletion{{}, completion("")} {
		m := &ChatModel{client: &fakeClient{response: resp}}
		if _, err := m.Chat(context.Background(), nil); !errors.Is(err, model.ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
	}
}

func TestChat_Errors(t *testing.T) {
	m := &ChatModel{client: &fakeClient{err: &openai.Error{StatusCode: 503}}}
	_, err := m.Chat(context.Background(), nil)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Provider != "openai" || apiErr.StatusCode != 503 {
		t.Error("expected APIError with status 503")
	}

	m = &ChatModel{client: &fakeClient{err: context.DeadlineExceeded}}
	if _, err := m.Chat(context.Background(), nil); err != context.DeadlineExceeded {
		t.Errorf("expected deadline error passed through, got %v", err)
	}
}
