package domain

// MatchCandidate is a scored pairing of one source title with one target
// title. Candidates are produced and consumed within a single matching pass
// and never persisted.
type MatchCandidate struct {
	SourceTitle      string
	TargetTitle      string
	Similarity       float64
	EntityGatePassed bool
}

// EventSide bundles one venue's YES/NO quotes for a single event title.
// Either pointer may be nil when the venue lists only one side; the liquidity
// filter removes such events before detection.
type EventSide struct {
	Venue Venue
	Title string
	Yes   *Quote
	No    *Quote
}

// MatchedEventPair is the accepted output of matching: two titles, one per
// venue, judged to describe the same real-world resolvable event.
type MatchedEventPair struct {
	A          EventSide // Kalshi side
	B          EventSide // Polymarket side
	Similarity float64
}

// EventKey returns a stable human-readable identifier for the pair.
func (p MatchedEventPair) EventKey() string {
	return p.A.Title + " <-> " + p.B.Title
}
