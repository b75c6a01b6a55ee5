// Package jokebot is the interactive joke bot workflow: a menu node that
// routes to joke, category, language, reset and exit nodes.
package jokebot

import (
	"github.com/dshills/jokegraph/graph"
	"github.com/dshills/jokegraph/jokes"
)

// State fields.
const (
	FieldJokes    = "jokes"
	FieldChoice   = "jokes_choice"
	FieldCategory = "category"
	FieldLanguage = "language"
	FieldQuit     = "quit"
)

// Node IDs.
const (
	NodeShowMenu       = "show_menu"
	NodeFetchJoke      = "fetch_joke"
	NodeUpdateCategory = "update_category"
	NodeUpdateLanguage = "update_language"
	NodeResetJokes     = "reset_jokes"
	NodeExitBot        = "exit_bot"
)

// Menu choices, used as router labels.
const (
	ChoiceNext     = "n"
	ChoiceCategory = "c"
	ChoiceLanguage = "l"
	ChoiceReset    = "r"
	ChoiceQuit     = "q"
)

// Defaults.
const (
	DefaultCategory = jokes.CategoryNeutral
	DefaultLanguage = "en"
)

// Categories and Languages list the selectable values in menu order.
var (
	Categories = []string{jokes.CategoryNeutral, jokes.CategoryChuck, jokes.CategoryAll}
	Languages  = []string{"en", "de", "es", "fr"}

	categoryLabels = []string{"Neutral", "Chuck Norris", "All"}
	languageLabels = []string{"English", "German", "Spanish", "French"}
)

// Joke is one told joke, as stored in the jokes history.
type Joke struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewSchema returns the bot's state schema.
func NewSchema() (*graph.Schema, error) {
	return graph.NewSchema(
		graph.Field{Name: FieldJokes, Policy: graph.Accumulate, Default: []Joke{}},
		graph.Field{Name: FieldChoice, Policy: graph.Replace, Default: ChoiceNext},
		graph.Field{Name: FieldCategory, Policy: graph.Replace, Default: DefaultCategory},
		graph.Field{Name: FieldLanguage, Policy: graph.Replace, Default: DefaultLanguage},
		graph.Field{Name: FieldQuit, Policy: graph.Replace, Default: false},
	)
}

// InitialState returns the defaults with category and language overridden
// where non-empty.
func InitialState(schema *graph.Schema, category, language string) (graph.Snapshot, error) {
	values := map[string]any{}
	if category != "" {
		values[FieldCategory] = category
	}
	if language != "" {
		values[FieldLanguage] = language
	}
	return schema.NewSnapshot(values)
}

// Route maps the menu choice to a router label. Choices outside the menu are
// returned unchanged and fall through to the edge's default target.
func Route(state graph.Snapshot) string {
	choice, _ := graph.Value[string](state, FieldChoice)
	return choice
}

// Told returns the jokes history.
func Told(state graph.Snapshot) []Joke {
	told, _ := graph.Sequence[Joke](state, FieldJokes)
	return told
}

// Category returns the current category.
func Category(state graph.Snapshot) string {
	c, _ := graph.Value[string](state, FieldCategory)
	return c
}

// Language returns the current language.
func Language(state graph.Snapshot) string {
	l, _ := graph.Value[string](state, FieldLanguage)
	return l
}

// Quit reports whether the exit node ran.
func Quit(state graph.Snapshot) bool {
	q, _ := graph.Value[bool](state, FieldQuit)
	return q
}
