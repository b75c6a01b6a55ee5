package jokes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

// Catalog is an in-memory Source holding jokes per language and category.
// Jokes are picked at random. It is safe for concurrent use.
type Catalog struct {
	mu    sync.Mutex
	rng   *rand.Rand
	jokes map[string]map[string][]string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithRand sets the random source, for reproducible picks.
func WithRand(r *rand.Rand) CatalogOption {
	return func(c *Catalog) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithJokes adds jokes to a language and category. "all" is not a valid
// target; it is derived from the other categories.
func WithJokes(language, category string, jokes ...string) CatalogOption {
	return func(c *Catalog) {
		c.add(language, category, jokes...)
	}
}

// WithoutBuiltin starts from an empty catalog.
func WithoutBuiltin() CatalogOption {
	return func(c *Catalog) {
		c.jokes = make(map[string]map[string][]string)
	}
}

// NewCatalog returns a catalog preloaded with the builtin jokes for en, de,
// es and fr in the neutral and chuck categories. Options apply in order.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		jokes: make(map[string]map[string][]string),
	}
	for lang, cats := range builtin {
		for cat, list := range cats {
			c.add(lang, cat, list...)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) add(language, category string, jokes ...string) {
	if c.jokes[language] == nil {
		c.jokes[language] = make(map[string][]string)
	}
	c.jokes[language][category] = append(c.jokes[language][category], jokes...)
}

// Fetch returns a random joke.
func (c *Catalog) Fetch(_ context.Context, language, category string) (string, error) {
	pool, err := c.pool(language, category)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rng.IntN(len(pool))], nil
}

// Jokes returns every joke Fetch could return for language and category.
func (c *Catalog) Jokes(language, category string) ([]string, error) {
	pool, err := c.pool(language, category)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), pool...), nil
}

func (c *Catalog) pool(language, category string) ([]string, error) {
	cats, ok := c.jokes[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLanguageNotFound, language)
	}
	if category != CategoryAll {
		list := cats[category]
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: %q in %s", ErrCategoryNotFound, category, LanguageName(language))
		}
		return list, nil
	}

	var all []string
	for _, name := range sortedCategories(cats) {
		all = append(all, cats[name]...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrCategoryNotFound, category, LanguageName(language))
	}
	return all, nil
}

// Languages returns the catalog's language codes in sorted order.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.jokes))
	for lang := range c.jokes {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func sortedCategories(cats map[string][]string) []string {
	names := make([]string, 0, len(cats))
	for name := range cats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
