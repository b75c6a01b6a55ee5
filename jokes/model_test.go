package jokes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/jokegraph/graph/model"
)

func TestModelSource_Fetch(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "  \"Chuck Norris kann Syntaxfehler kompilieren.\"\n"}}}
	src := NewModelSource(mock)

	joke, err := src.Fetch(context.Background(), "de", CategoryChuck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if joke != "Chuck Norris kann Syntaxfehler kompilieren." {
		t.Errorf("expected trimmed joke, got %q", joke)
	}

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	msgs := mock.Calls[0]
	if len(msgs) != 2 || msgs[0].Role != model.RoleSystem || msgs[1].Role != model.RoleUser {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if !strings.Contains(msgs[1].Content, "German") || !strings.Contains(msgs[1].Content, "Chuck Norris") {
		t.Errorf("expected prompt to name language and category, got %q", msgs[1].Content)
	}
}

func TestModelSource_Errors(t *testing.T) {
	src := NewModelSource(&model.MockChatModel{Responses: []model.ChatOut{{Text: "x"}}}, "en")
	if _, err := src.Fetch(context.Background(), "de", CategoryNeutral); !errors.Is(err, ErrLanguageNotFound) {
		t.Errorf("expected ErrLanguageNotFound, got %v", err)
	}
	if _, err := src.Fetch(context.Background(), "en", "puns"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}

	down := errors.New("down")
	src = NewModelSource(&model.MockChatModel{Err: down})
	if _, err := src.Fetch(context.Background(), "en", CategoryAll); !errors.Is(err, down) {
		t.Errorf("expected model error, got %v", err)
	}

	src = NewModelSource(&model.MockChatModel{Responses: []model.ChatOut{{Text: "  "}}})
	if _, err := src.Fetch(context.Background(), "en", CategoryAll); !errors.Is(err, model.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func(_ context.Context, language, category string) (string, error) {
		return language + "/" + category, nil
	})
	if got, _ := src.Fetch(context.Background(), "en", "all"); got != "en/all" {
		t.Errorf("expected en/all, got %q", got)
	}
}
