package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirst(t *testing.T) {
	words := []string{"a", "b", "c"}
	assert.Equal(t, []string{"a", "b"}, First(words, 2))
	assert.Equal(t, words, First(words, 10))
	assert.Equal(t, words, First(words, 0))

	out := First(words, 1)
	out[0] = "z"
	assert.Equal(t, "a", words[0])
}

func TestGenerateCount(t *testing.T) {
	g := NewWithSeed(1)
	words := []string{"alpha", "beta", "gamma"}
	out := g.Generate(words, 25)
	require.Len(t, out, 25)
	for _, w := range out {
		assert.Contains(t, words, w)
	}
	assert.Nil(t, g.Generate(nil, 3))
	assert.Nil(t, g.Generate(words, 0))
}

func TestGenerateWeightedFavorsWeakKeys(t *testing.T) {
	g := NewWithSeed(7)
	words := []string{"aaaa", "zzzz"}
	weak := map[rune]struct{}{'z': {}}

	out := g.GenerateWeighted(words, 2000, weak, 10)
	require.Len(t, out, 2000)
	zCount := 0
	for _, w := range out {
		if w == "zzzz" {
			zCount++
		}
	}
	// zzzz weighs 41 against 1, so it should dominate.
	assert.Greater(t, zCount, 1800)
}

func TestGenerateWeightedWithoutWeakKeysIsUniformish(t *testing.T) {
	g := NewWithSeed(3)
	out := g.GenerateWeighted([]string{"aa", "bb"}, 1000, nil, 5)
	aCount := 0
	for _, w := range out {
		if w == "aa" {
			aCount++
		}
	}
	assert.InDelta(t, 500, aCount, 100)
}
