// Package matching pairs event titles across the two venues. The token
// matcher is the primary, always-available path; the embedding matcher is an
// optional refinement over titles the token pass left unmatched. Both apply
// the same hard entity gate: titles with non-empty, disjoint entity sets
// never match, whatever their similarity score.
package matching

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/text"
)

const (
	// DefaultSimilarityThreshold is the minimum Jaccard score for an
	// automatic token match.
	DefaultSimilarityThreshold = 0.72

	// DefaultMaxTargetsPerSource bounds the candidate fan-out per source
	// title so a pass stays near-linear on pathological inputs.
	DefaultMaxTargetsPerSource = 40
)

// TokenMatcherConfig holds the tunables for the token-similarity pass.
type TokenMatcherConfig struct {
	SimilarityThreshold float64
	MaxTargetsPerSource int

	// ExplicitAliases maps source titles to target titles. Entries always
	// win: they bypass scoring and the entity gate entirely. Keys and
	// values are compared case-insensitively.
	ExplicitAliases map[string]string
}

// TokenMatcher scores title pairs by token-set similarity with an
// entity-overlap guard.
type TokenMatcher struct {
	cfg     TokenMatcherConfig
	aliases map[string]string // lower(source) -> lower(target)
	logger  *slog.Logger
}

// NewTokenMatcher creates a TokenMatcher, applying defaults for unset config
// fields.
func NewTokenMatcher(cfg TokenMatcherConfig, logger *slog.Logger) *TokenMatcher {
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold >= 1 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.MaxTargetsPerSource <= 0 {
		cfg.MaxTargetsPerSource = DefaultMaxTargetsPerSource
	}
	aliases := make(map[string]string, len(cfg.ExplicitAliases))
	for src, tgt := range cfg.ExplicitAliases {
		aliases[strings.ToLower(strings.TrimSpace(src))] = strings.ToLower(strings.TrimSpace(tgt))
	}
	return &TokenMatcher{
		cfg:     cfg,
		aliases: aliases,
		logger:  logger.With(slog.String("component", "token_matcher")),
	}
}

// Match returns the accepted candidate per source title, in source order.
// Sources with no candidate at or above the threshold are absent from the
// result and may be retried by the embedding pass.
func (m *TokenMatcher) Match(sources, targets []string, tc *text.Cache) []domain.MatchCandidate {
	index := buildTokenIndex(targets, tc)
	targetByLower := make(map[string]string, len(targets))
	for _, t := range targets {
		targetByLower[strings.ToLower(strings.TrimSpace(t))] = t
	}

	var accepted []domain.MatchCandidate
	for _, src := range sources {
		// Explicit mapping wins and bypasses the entity gate.
		if alias, ok := m.aliases[strings.ToLower(strings.TrimSpace(src))]; ok {
			tgt, present := targetByLower[alias]
			if !present {
				m.logger.Debug("alias target absent from snapshot",
					slog.String("source", src),
					slog.String("alias", alias),
				)
				continue
			}
			accepted = append(accepted, domain.MatchCandidate{
				SourceTitle:      src,
				TargetTitle:      tgt,
				Similarity:       1.0,
				EntityGatePassed: true,
			})
			continue
		}

		if cand, ok := m.bestCandidate(src, index, tc); ok {
			accepted = append(accepted, cand)
		}
	}
	return accepted
}

func (m *TokenMatcher) bestCandidate(src string, index *tokenIndex, tc *text.Cache) (domain.MatchCandidate, bool) {
	srcTokens := tc.Tokens(src)
	srcEntities := tc.Entities(src)
	srcNumbers := tc.Numbers(src)

	candidates := index.lookup(srcTokens, m.cfg.MaxTargetsPerSource)

	best := domain.MatchCandidate{Similarity: -1}
	bestEntityOverlap := -1
	for _, tgt := range candidates {
		if !text.SameNumberWindow(srcNumbers, tc.Numbers(tgt)) {
			continue
		}
		tgtEntities := tc.Entities(tgt)
		overlap := srcEntities.IntersectCount(tgtEntities)
		if len(srcEntities) > 0 && len(tgtEntities) > 0 && overlap == 0 {
			// Hard veto: shared category words are not shared subjects.
			continue
		}
		score := text.Jaccard(srcTokens, tc.Tokens(tgt))
		if score < best.Similarity {
			continue
		}
		if score == best.Similarity {
			// Deterministic tie-break: larger entity intersection,
			// then lexicographically smaller target.
			if overlap < bestEntityOverlap {
				continue
			}
			if overlap == bestEntityOverlap && tgt >= best.TargetTitle {
				continue
			}
		}
		best = domain.MatchCandidate{
			SourceTitle:      src,
			TargetTitle:      tgt,
			Similarity:       score,
			EntityGatePassed: true,
		}
		bestEntityOverlap = overlap
	}

	if best.Similarity < m.cfg.SimilarityThreshold {
		return domain.MatchCandidate{}, false
	}
	return best, true
}

// tokenIndex is a shared-token inverted index over target titles, used to
// restrict scoring to the lexically-closest candidates instead of all pairs.
type tokenIndex struct {
	byToken map[string][]string
	all     []string
}

func buildTokenIndex(targets []string, tc *text.Cache) *tokenIndex {
	idx := &tokenIndex{byToken: make(map[string][]string), all: targets}
	for _, tgt := range targets {
		for tok := range tc.Tokens(tgt) {
			idx.byToken[tok] = append(idx.byToken[tok], tgt)
		}
	}
	return idx
}

// lookup returns up to limit target titles sharing at least one token with
// the query set, ordered by shared-token count descending then title
// ascending. Queries with no shared tokens return nothing: a pair without a
// single common token cannot clear the similarity threshold anyway.
func (idx *tokenIndex) lookup(tokens text.TokenSet, limit int) []string {
	counts := make(map[string]int)
	for tok := range tokens {
		for _, tgt := range idx.byToken[tok] {
			counts[tgt]++
		}
	}
	ranked := make([]string, 0, len(counts))
	for tgt := range counts {
		ranked = append(ranked, tgt)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
