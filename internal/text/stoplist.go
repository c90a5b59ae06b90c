package text

// stopListVersion identifies the curated stop-list revision. Bump it whenever
// an entry is added or removed so cached entity sets can be invalidated by
// operators comparing versions.
const stopListVersion = 4

// stopWords holds lower-cased words that must never count as entity tokens:
// a base set of English stop words plus generic capitalized words that appear
// in market titles without naming a subject (platform names, category labels,
// calendar words).
var stopWords = func() TokenSet {
	words := []string{
		// Base English stop words.
		"the", "and", "for", "are", "was", "were", "will", "with", "this",
		"that", "from", "into", "over", "under", "after", "before", "between",
		"during", "about", "against", "above", "below", "again", "once",
		"here", "there", "all", "any", "both", "each", "few", "more", "most",
		"other", "some", "such", "only", "own", "same", "than", "then",
		"they", "their", "them", "what", "when", "where", "which", "who",
		"whom", "how", "why", "can", "could", "should", "would", "may",
		"might", "must", "shall", "not", "nor", "but", "yes",

		// Generic capitalized market-title words.
		"global", "search", "searches", "actors", "actor", "year", "years",
		"rank", "ranked", "ranking", "top", "world", "trending", "trend",
		"google", "market", "markets", "election", "elections", "winner",
		"win", "wins", "champion", "championship", "season", "series",
		"week", "month", "day", "game", "games", "match", "title", "award",
		"awards", "best", "first", "second", "third", "new", "next",
		"people", "person", "movie", "movies", "film", "films", "song",
		"songs", "album", "president", "presidential", "united", "states",
		"america", "american",
	}
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// StopListVersion exposes the current stop-list revision.
func StopListVersion() int { return stopListVersion }
