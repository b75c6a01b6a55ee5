package model

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "joke"},
		{Role: RoleSystem, Content: "be kind"},
		{Role: RoleAssistant, Content: "ok"},
	})

	if system != "be brief\n\nbe kind" {
		t.Errorf("expected joined system prompt, got %q", system)
	}
	want := []Message{{Role: RoleUser, Content: "joke"}, {Role: RoleAssistant, Content: "ok"}}
	if diff := cmp.Diff(want, rest); diff != "" {
		t.Errorf("conversation mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("slow down")
	err := &APIError{Provider: "openai", StatusCode: 429, Err: cause}

	if err.Error() != "openai: status 429: slow down" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
	if !err.Retryable() {
		t.Error("expected 429 to be retryable")
	}
	if (&APIError{StatusCode: 401}).Retryable() {
		t.Error("expected 401 not to be retryable")
	}
	if got := (&APIError{Provider: "google", Err: cause}).Error(); got != "google: slow down" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestMockChatModel(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "one"}, {Text: "two"}}}
	msgs := []Message{{Role: RoleUser, Content: "hi"}}

	for _, want := range []string{"one", "two", "two"} {
		out, err := mock.Chat(context.Background(), msgs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Text != want {
			t.Errorf("expected %q, got %q", want, out.Text)
		}
	}
	if mock.CallCount() != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount())
	}

	mock.Reset()
	out, _ := mock.Chat(context.Background(), msgs)
	if out.Text != "one" || mock.CallCount() != 1 {
		t.Errorf("expected reset to rewind, got %q after %d calls", out.Text, mock.CallCount())
	}
}

func TestMockChatModel_Errors(t *testing.T) {
	mock := &MockChatModel{Err: errors.New("down")}
	if _, err := mock.Chat(context.Background(), nil); err == nil {
		t.Error("expected configured error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&MockChatModel{}).Chat(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
