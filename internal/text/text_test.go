package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	set := Tokenize("Will the Fed cut rates in September 2026?")

	// Runs shorter than 3 characters ("in") are dropped; "the" survives as a
	// token and is handled by downstream scoring, not tokenization.
	assert.True(t, set.Contains("will"))
	assert.True(t, set.Contains("fed"))
	assert.True(t, set.Contains("cut"))
	assert.True(t, set.Contains("rates"))
	assert.True(t, set.Contains("september"))
	assert.True(t, set.Contains("2026"))
	assert.False(t, set.Contains("in"))
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a b c"))
}

func TestJaccard(t *testing.T) {
	a := Tokenize("will the fed cut rates")
	b := Tokenize("will the fed cut rates")
	assert.InDelta(t, 1.0, Jaccard(a, b), 1e-12)

	c := Tokenize("completely different words here")
	assert.Equal(t, 0.0, Jaccard(a, c))

	// |a ∩ b| = 2 ("will", "fed"), |a ∪ b| = 4.
	d := Tokenize("will fed")
	e := Tokenize("will fed hike twice")
	assert.InDelta(t, 0.5, Jaccard(d, e), 1e-12)

	assert.Equal(t, 0.0, Jaccard(TokenSet{}, TokenSet{}))
}

func TestExtractEntities(t *testing.T) {
	ents := ExtractEntities("Will Cillian Murphy win Best Actor?")

	assert.True(t, ents.Contains("cillian"))
	assert.True(t, ents.Contains("murphy"))
	// "Will", "Best", and "Actor" are capitalized category words, not
	// subjects; the stop-list removes them.
	assert.False(t, ents.Contains("will"))
	assert.False(t, ents.Contains("best"))
	assert.False(t, ents.Contains("actor"))
	// Lower-case words never qualify.
	assert.False(t, ents.Contains("win"))
}

func TestExtractEntitiesDisjointSubjects(t *testing.T) {
	a := ExtractEntities("Will Cillian Murphy win Best Actor?")
	b := ExtractEntities("Will David Corenswet win Best Actor?")

	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	assert.Equal(t, 0, a.IntersectCount(b))
}

func TestNumberWindow(t *testing.T) {
	assert.Equal(t, []int{100, 2026}, NumberWindow("Bitcoin above 100k by 2026"))
	assert.Nil(t, NumberWindow("no numbers here"))
	// Runs longer than 4 digits split into 4-digit chunks.
	assert.Equal(t, []int{1000, 0}, NumberWindow("above 100000"))
}

func TestSameNumberWindow(t *testing.T) {
	assert.True(t, SameNumberWindow(nil, []int{1, 2}))
	assert.True(t, SameNumberWindow([]int{1, 2}, nil))
	assert.True(t, SameNumberWindow([]int{2026}, []int{2026}))
	assert.False(t, SameNumberWindow([]int{2026}, []int{2027}))
	assert.False(t, SameNumberWindow([]int{1, 2}, []int{1}))
}

func TestCacheMemoizes(t *testing.T) {
	c := NewCache()
	title := "Will the Fed cut rates in September 2026?"

	first := c.Tokens(title)
	second := c.Tokens(title)
	assert.Equal(t, first, second)

	assert.Equal(t, c.Numbers(title), NumberWindow(title))
	assert.Equal(t, c.Entities(title), ExtractEntities(title))
}
