// Package jokes provides joke sources for the joke bot: a builtin catalog and
// an LLM-backed source.
package jokes

import (
	"context"
	"errors"
)

// Categories.
const (
	CategoryNeutral = "neutral"
	CategoryChuck   = "chuck"

	// CategoryAll draws from every category of the language.
	CategoryAll = "all"
)

var (
	// ErrLanguageNotFound is returned for a language the source does not serve.
	ErrLanguageNotFound = errors.New("no jokes in that language")

	// ErrCategoryNotFound is returned for a category the source does not serve.
	ErrCategoryNotFound = errors.New("no jokes in that category")
)

// Source produces one joke for a language and category.
type Source interface {
	Fetch(ctx context.Context, language, category string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, language, category string) (string, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, language, category string) (string, error) {
	return f(ctx, language, category)
}

// LanguageName returns the English name of a language code, or the code itself.
func LanguageName(code string) string {
	switch code {
	case "en":
		return "English"
	case "de":
		return "German"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	default:
		return code
	}
}
