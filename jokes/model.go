package jokes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/jokegraph/graph/model"
)

const systemPrompt = "You are a joke bot for programmers. Reply with exactly one short joke and nothing else: " +
	"no preamble, no explanation, no quotation marks."

var categoryPrompts = map[string]string{
	CategoryNeutral: "a clean, family-friendly programming joke",
	CategoryChuck:   "a Chuck Norris fact about programming",
	CategoryAll:     "a programming joke, either a neutral one or a Chuck Norris fact",
}

// ModelSource asks a chat model for a joke.
type ModelSource struct {
	model     model.ChatModel
	languages map[string]bool
}

// NewModelSource returns a Source backed by m. It accepts the languages the
// builtin catalog has (en, de, es, fr) unless languages are given.
func NewModelSource(m model.ChatModel, languages ...string) *ModelSource {
	if len(languages) == 0 {
		languages = []string{"en", "de", "es", "fr"}
	}
	set := make(map[string]bool, len(languages))
	for _, l := range languages {
		set[l] = true
	}
	return &ModelSource{model: m, languages: set}
}

// Fetch implements Source.
func (s *ModelSource) Fetch(ctx context.Context, language, category string) (string, error) {
	if !s.languages[language] {
		return "", fmt.Errorf("%w: %q", ErrLanguageNotFound, language)
	}
	what, ok := categoryPrompts[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrCategoryNotFound, category)
	}

	out, err := s.model.Chat(ctx, []model.Message{
		{Role: model.RoleSystem, Content: systemPrompt},
		{Role: model.RoleUser, Content: fmt.Sprintf("Tell me %s, written in %s.", what, LanguageName(language))},
	})
	if err != nil {
		return "", fmt.Errorf("fetch joke: %w", err)
	}

	joke := strings.Trim(strings.TrimSpace(out.Text), "\"“”")
	if joke == "" {
		return "", fmt.Errorf("fetch joke: %w", model.ErrEmptyResponse)
	}
	return joke, nil
}
