package rules

import (
	"math/rand/v2"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
)

// Rand is the random source used for picking replies.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the process-wide math/rand/v2 generator, which is
// seeded once at start-up.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// GlobalRand is the default, process-wide source.
var GlobalRand Rand = globalRand{}

// Selector picks one reply from a category pool.
type Selector struct {
	table *Table
	rnd   Rand
}

// NewSelector uses GlobalRand when rnd is nil.
func NewSelector(t *Table, rnd Rand) *Selector {
	if rnd == nil {
		rnd = GlobalRand
	}
	return &Selector{table: t, rnd: rnd}
}

// Select returns a uniformly drawn member of the category's pool. Repeats
// are allowed.
func (s *Selector) Select(c model.Category) (string, error) {
	pool := s.table.Pool(c)
	if len(pool) == 0 {
		return "", errx.Config("category %q has no replies", c)
	}
	return pool[s.rnd.IntN(len(pool))], nil
}
