package text

// Cache memoizes Tokenize, ExtractEntities, and NumberWindow per unique
// title. A Cache is scoped to a single matching pass over one snapshot;
// create a fresh one per pass rather than sharing a process-wide instance.
// It is not safe for concurrent use; a pass is fully synchronous.
type Cache struct {
	tokens   map[string]TokenSet
	entities map[string]TokenSet
	numbers  map[string][]int
}

// NewCache returns an empty per-pass cache.
func NewCache() *Cache {
	return &Cache{
		tokens:   make(map[string]TokenSet),
		entities: make(map[string]TokenSet),
		numbers:  make(map[string][]int),
	}
}

// Tokens returns the memoized token set for title.
func (c *Cache) Tokens(title string) TokenSet {
	if set, ok := c.tokens[title]; ok {
		return set
	}
	set := Tokenize(title)
	c.tokens[title] = set
	return set
}

// Entities returns the memoized entity token set for title.
func (c *Cache) Entities(title string) TokenSet {
	if set, ok := c.entities[title]; ok {
		return set
	}
	set := ExtractEntities(title)
	c.entities[title] = set
	return set
}

// Numbers returns the memoized numeric window for title.
func (c *Cache) Numbers(title string) []int {
	if nums, ok := c.numbers[title]; ok {
		return nums
	}
	nums := NumberWindow(title)
	c.numbers[title] = nums
	return nums
}
