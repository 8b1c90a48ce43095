package rules

import (
	"strings"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
)

// Table is the immutable category table: ordered trigger rules plus a
// reply pool per category. Build it with NewTable.
type Table struct {
	rules []model.CategoryRule
	pools map[model.Category][]string
}

// NewTable validates and copies the rules. Every pool must be non-empty and
// every non-generic rule needs at least one trigger; generic is the fallback
// and must not appear among the ordered rules.
func NewTable(rules []model.CategoryRule, generic []string) (*Table, error) {
	if len(generic) == 0 {
		return nil, errx.Config("generic pool is empty")
	}

	t := &Table{
		rules: make([]model.CategoryRule, 0, len(rules)),
		pools: make(map[model.Category][]string, len(rules)+1),
	}
	for i, r := range rules {
		if r.Category == "" {
			return nil, errx.Config("rule %d has no category", i)
		}
		if r.Category == model.CategoryGeneric {
			return nil, errx.Config("generic is the fallback and cannot be an ordered rule")
		}
		if _, dup := t.pools[r.Category]; dup {
			return nil, errx.Config("duplicate category %q", r.Category)
		}
		if len(r.Pool) == 0 {
			return nil, errx.Config("category %q has an empty pool", r.Category)
		}

		triggers := make([]string, 0, len(r.Triggers))
		for _, trig := range r.Triggers {
			// matching happens on lower-cased input, so fold triggers the same way
			if trig = strings.ToLower(trig); trig != "" {
				triggers = append(triggers, trig)
			}
		}
		if len(triggers) == 0 {
			return nil, errx.Config("category %q has no triggers", r.Category)
		}

		pool := append([]string(nil), r.Pool...)
		t.rules = append(t.rules, model.CategoryRule{Category: r.Category, Triggers: triggers, Pool: pool})
		t.pools[r.Category] = pool
	}
	t.pools[model.CategoryGeneric] = append([]string(nil), generic...)
	return t, nil
}

// DefaultTable builds the built-in table. The built-in data is known good,
// so a failure here is a programming error.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRules(), DefaultGenericPool())
	if err != nil {
		panic(err)
	}
	return t
}

// Pool returns the reply pool of a category.
func (t *Table) Pool(c model.Category) []string {
	return t.pools[c]
}

// Order returns the categories in match priority order, generic last.
func (t *Table) Order() []model.Category {
	out := make([]model.Category, 0, len(t.rules)+1)
	for _, r := range t.rules {
		out = append(out, r.Category)
	}
	return append(out, model.CategoryGeneric)
}

// Classifier maps a raw message to exactly one category.
type Classifier struct {
	table *Table
}

func NewClassifier(t *Table) *Classifier {
	return &Classifier{table: t}
}

// Classify lower-cases msg and returns the first category whose trigger is
// a substring of it. Matching is plain containment, so "hi" also fires
// inside "this".
func (c *Classifier) Classify(msg string) model.Category {
	lower := strings.ToLower(msg)
	for _, r := range c.table.rules {
		for _, trig := range r.Triggers {
			if strings.Contains(lower, trig) {
				return r.Category
			}
		}
	}
	return model.CategoryGeneric
}
