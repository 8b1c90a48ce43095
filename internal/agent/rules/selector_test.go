package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekochat-companion/server/internal/agent/model"
	errx "github.com/nekochat-companion/server/internal/core/error"
)

type fixedRand struct{ n int }

func (f fixedRand) IntN(int) int { return f.n }

func TestSelect_ReturnsPoolMember(t *testing.T) {
	table := DefaultTable()
	s := NewSelector(table, nil)

	for _, c := range table.Order() {
		for i := 0; i < 50; i++ {
			got, err := s.Select(c)
			require.NoError(t, err)
			assert.Contains(t, table.Pool(c), got)
		}
	}
}

func TestSelect_UsesInjectedSource(t *testing.T) {
	table := DefaultTable()
	s := NewSelector(table, fixedRand{n: 2})

	got, err := s.Select(model.CategoryGreeting)
	require.NoError(t, err)
	assert.Equal(t, table.Pool(model.CategoryGreeting)[2], got)
}

func TestSelect_Uniform(t *testing.T) {
	table, err := NewTable([]model.CategoryRule{
		{Category: model.CategoryGreeting, Triggers: []string{"hi"}, Pool: []string{"a", "b", "c", "d"}},
	}, []string{"g"})
	require.NoError(t, err)
	s := NewSelector(table, nil)

	const draws = 8000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		got, err := s.Select(model.CategoryGreeting)
		require.NoError(t, err)
		counts[got]++
	}

	// expected 2000 per bucket, sd ~39; 6 sd keeps this from flaking
	want := float64(draws) / 4
	for _, v := range []string{"a", "b", "c", "d"} {
		assert.InDelta(t, want, float64(counts[v]), 6*math.Sqrt(want*0.75), v)
	}
}

func TestSelect_UnknownCategory(t *testing.T) {
	s := NewSelector(DefaultTable(), nil)

	_, err := s.Select(model.Category("nope"))
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindConfig))
}
