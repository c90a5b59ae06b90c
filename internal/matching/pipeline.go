package matching

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/text"
)

// VectorsFunc fetches embedding vectors for the given titles. It is only
// invoked when the token pass leaves titles unmatched and an embedding
// provider is configured.
type VectorsFunc func(ctx context.Context, titles []string) (map[string][]float64, error)

// Pipeline runs the token pass over a pair of venue snapshots, then the
// embedding pass over whatever the token pass left unmatched, and assembles
// matched event pairs with their best YES/NO quotes per side.
type Pipeline struct {
	token     *TokenMatcher
	embedding *EmbeddingMatcher
	vectors   VectorsFunc // nil disables the embedding pass
	logger    *slog.Logger
}

// NewPipeline wires the two matchers. vectors may be nil, in which case only
// the token pass runs.
func NewPipeline(token *TokenMatcher, embedding *EmbeddingMatcher, vectors VectorsFunc, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		token:     token,
		embedding: embedding,
		vectors:   vectors,
		logger:    logger.With(slog.String("component", "match_pipeline")),
	}
}

// Match pairs Kalshi events against Polymarket events. Kalshi titles are the
// source side and Polymarket titles the target side; each accepted candidate
// becomes one MatchedEventPair carrying both venues' best quotes. An
// embedding fetch failure degrades to token-only results rather than failing
// the pass.
func (p *Pipeline) Match(ctx context.Context, kalshi, polymarket []domain.Quote) []domain.MatchedEventPair {
	srcEvents := groupByTitle(kalshi)
	tgtEvents := groupByTitle(polymarket)
	sources := sortedTitles(srcEvents)
	targets := sortedTitles(tgtEvents)
	if len(sources) == 0 || len(targets) == 0 {
		return nil
	}

	tc := text.NewCache()
	candidates := p.token.Match(sources, targets, tc)

	matchedSrc := make(map[string]bool, len(candidates))
	matchedTgt := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		matchedSrc[c.SourceTitle] = true
		matchedTgt[strings.ToLower(c.TargetTitle)] = true
	}

	if p.vectors != nil && p.embedding != nil {
		extra := p.embeddingPass(ctx, sources, targets, matchedSrc, matchedTgt, tc)
		candidates = append(candidates, extra...)
	}

	pairs := make([]domain.MatchedEventPair, 0, len(candidates))
	for _, c := range candidates {
		src, ok := srcEvents[c.SourceTitle]
		if !ok {
			continue
		}
		tgt, ok := tgtEvents[c.TargetTitle]
		if !ok {
			continue
		}
		pairs = append(pairs, domain.MatchedEventPair{
			A:          src,
			B:          tgt,
			Similarity: c.Similarity,
		})
	}
	p.logger.Info("matching pass complete",
		slog.Int("kalshi_events", len(sources)),
		slog.Int("polymarket_events", len(targets)),
		slog.Int("pairs", len(pairs)),
	)
	return pairs
}

func (p *Pipeline) embeddingPass(
	ctx context.Context,
	sources, targets []string,
	matchedSrc map[string]bool,
	matchedTgt map[string]bool,
	tc *text.Cache,
) []domain.MatchCandidate {
	var openSrc, openTgt []string
	for _, s := range sources {
		if !matchedSrc[s] {
			openSrc = append(openSrc, s)
		}
	}
	for _, t := range targets {
		if !matchedTgt[strings.ToLower(t)] {
			openTgt = append(openTgt, t)
		}
	}
	if len(openSrc) == 0 || len(openTgt) == 0 {
		return nil
	}

	titles := make([]string, 0, len(openSrc)+len(openTgt))
	titles = append(titles, openSrc...)
	titles = append(titles, openTgt...)
	vectors, err := p.vectors(ctx, titles)
	if err != nil {
		p.logger.Warn("embedding fetch failed, token-only results this pass",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return p.embedding.Match(openSrc, openTgt, vectors, tc)
}

// groupByTitle folds a venue snapshot into one EventSide per title, keeping
// the best-priced YES and NO quote seen for that title.
func groupByTitle(quotes []domain.Quote) map[string]domain.EventSide {
	events := make(map[string]domain.EventSide)
	for i := range quotes {
		q := &quotes[i]
		side, ok := events[q.EventTitle]
		if !ok {
			side = domain.EventSide{Venue: q.Venue, Title: q.EventTitle}
		}
		switch q.Outcome {
		case domain.OutcomeYes:
			if side.Yes == nil || q.Price < side.Yes.Price {
				side.Yes = q
			}
		case domain.OutcomeNo:
			if side.No == nil || q.Price < side.No.Price {
				side.No = q
			}
		}
		events[q.EventTitle] = side
	}
	return events
}

func sortedTitles(events map[string]domain.EventSide) []string {
	titles := make([]string, 0, len(events))
	for t := range events {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}
