package jokebot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/jokegraph/console"
	"github.com/dshills/jokegraph/graph"
	"github.com/dshills/jokegraph/graph/model"
	"github.com/dshills/jokegraph/jokes"
)

// Dialogue is the user interaction the nodes need. *console.Console implements it.
type Dialogue interface {
	Menu(ctx context.Context, s console.Status) (string, error)
	Select(ctx context.Context, title string, options []string) (int, error)
	Joke(text string)
	Notice(text string)
}

// Bot holds the collaborators of the workflow's nodes.
type Bot struct {
	dialogue Dialogue
	source   jokes.Source
	logger   *zap.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the diagnostics logger. Default: no-op.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Bot talking through d and telling jokes from src.
func New(d Dialogue, src jokes.Source, opts ...Option) *Bot {
	b := &Bot{dialogue: d, source: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the finalized workflow graph:
//
//	show_menu -n-> fetch_joke      -> show_menu
//	          -c-> update_category -> show_menu
//	          -l-> update_language -> show_menu
//	          -r-> reset_jokes     -> show_menu
//	          -q-> exit_bot        -> END
//	          (anything else)      -> exit_bot
func (b *Bot) Build() (*graph.Graph, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, err
	}
	return graph.NewBuilder(schema).
		AddNode(NodeShowMenu, graph.NodeFunc(b.showMenu)).
		AddNode(NodeFetchJoke, graph.NodeFunc(b.fetchJoke)).
		AddNode(NodeUpdateCategory, graph.NodeFunc(b.updateCategory)).
		AddNode(NodeUpdateLanguage, graph.NodeFunc(b.updateLanguage)).
		AddNode(NodeResetJokes, graph.NodeFunc(b.resetJokes)).
		AddNode(NodeExitBot, graph.NodeFunc(b.exitBot)).
		SetEntryPoint(NodeShowMenu).
		AddConditionalEdges(NodeShowMenu, Route, map[string]graph.Target{
			ChoiceNext:     graph.To(NodeFetchJoke),
			ChoiceCategory: graph.To(NodeUpdateCategory),
			ChoiceLanguage: graph.To(NodeUpdateLanguage),
			ChoiceReset:    graph.To(NodeResetJokes),
			ChoiceQuit:     graph.To(NodeExitBot),
		}, graph.WithDefault(graph.To(NodeExitBot))).
		AddEdge(NodeFetchJoke, graph.To(NodeShowMenu)).
		AddEdge(NodeUpdateCategory, graph.To(NodeShowMenu)).
		AddEdge(NodeUpdateLanguage, graph.To(NodeShowMenu)).
		AddEdge(NodeResetJokes, graph.To(NodeShowMenu)).
		AddEdge(NodeExitBot, graph.End()).
		Finalize()
}

func (b *Bot) showMenu(ctx context.Context, state graph.Snapshot) (graph.Update, error) {
	choice, err := b.dialogue.Menu(ctx, console.Status{
		Category:  Category(state),
		Language:  Language(state),
		JokesTold: state.Len(FieldJokes),
	})
	if errors.Is(err, io.EOF) {
		b.logger.Debug("input closed, quitting")
		choice = ChoiceQuit
	} else if err != nil {
		return nil, fmt.Errorf("read menu choice: %w", err)
	}
	return graph.Update{FieldChoice: choice}, nil
}

func (b *Bot) fetchJoke(ctx context.Context, state graph.Snapshot) (graph.Update, error) {
	category, language := Category(state), Language(state)
	text, err := b.source.Fetch(ctx, language, category)
	if err != nil {
		var apiErr *model.APIError
		transient := errors.As(err, &apiErr) && apiErr.Retryable()
		b.logger.Warn("joke fetch failed",
			zap.String("language", language),
			zap.String("category", category),
			zap.Bool("transient", transient),
			zap.Error(err))
		notice := "⚠️ Could not fetch a joke: " + err.Error()
		if transient {
			notice += " (temporary, press n to try again)"
		}
		b.dialogue.Notice(notice)
		return nil, nil
	}
	b.dialogue.Joke(text)
	return graph.Update{FieldJokes: []Joke{{Text: text, Category: category}}}, nil
}

func (b *Bot) updateCategory(ctx context.Context, state graph.Snapshot) (graph.Update, error) {
	return b.selectField(ctx, FieldCategory, "Select Category", Categories, categoryLabels, Category(state))
}

func (b *Bot) updateLanguage(ctx context.Context, state graph.Snapshot) (graph.Update, error) {
	return b.selectField(ctx, FieldLanguage, "Select Language", Languages, languageLabels, Language(state))
}

// selectField asks for one of values and stores it in field. An invalid or
// missing answer keeps the current value. A cancelled ctx fails the node.
func (b *Bot) selectField(ctx context.Context, field, title string, values, labels []string, current string) (graph.Update, error) {
	i, err := b.dialogue.Select(ctx, title, labels)
	switch {
	case errors.Is(err, console.ErrInvalidSelection), errors.Is(err, io.EOF):
		b.dialogue.Notice(fmt.Sprintf("Invalid selection, keeping %s %s.", strings.ReplaceAll(field, "_", " "), current))
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s selection: %w", field, err)
	}
	return graph.Update{field: values[i]}, nil
}

func (b *Bot) resetJokes(context.Context, graph.Snapshot) (graph.Update, error) {
	b.dialogue.Notice("🔁 Joke history reset.")
	return graph.Update{FieldJokes: graph.Overwrite([]Joke{})}, nil
}

func (b *Bot) exitBot(context.Context, graph.Snapshot) (graph.Update, error) {
	b.dialogue.Notice("🚪 Exiting Joke Bot...")
	return graph.Update{FieldQuit: true}, nil
}
