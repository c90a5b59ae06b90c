package matching

import (
	"log/slog"
	"math"
	"sort"

	"github.com/arblab/polykalshi/internal/domain"
	"github.com/arblab/polykalshi/internal/text"
)

const (
	// DefaultMinCosine is the minimum cosine similarity for an embedding
	// match.
	DefaultMinCosine = 0.82

	// DefaultMaxCandidates caps the number of target titles scored per
	// source title.
	DefaultMaxCandidates = 800

	// DefaultTopK is how many targets are kept per source before the
	// threshold and gates are applied.
	DefaultTopK = 3
)

// EmbeddingMatcherConfig holds the tunables for the embedding refinement
// pass.
type EmbeddingMatcherConfig struct {
	MinCosine     float64
	MaxCandidates int
	TopK          int
}

// EmbeddingMatcher scores title pairs by cosine similarity over externally
// supplied vectors. It performs no network I/O: the caller obtains vectors
// from the embedding provider and injects them. Embeddings recover
// paraphrase-level matches that token overlap misses ("ranked #1" vs "be the
// #1 rank"), but the entity gate still applies; semantic similarity is not
// evidence against the named-entity veto.
type EmbeddingMatcher struct {
	cfg    EmbeddingMatcherConfig
	logger *slog.Logger
}

// NewEmbeddingMatcher creates an EmbeddingMatcher, applying defaults for
// unset config fields.
func NewEmbeddingMatcher(cfg EmbeddingMatcherConfig, logger *slog.Logger) *EmbeddingMatcher {
	if cfg.MinCosine <= 0 || cfg.MinCosine >= 1 {
		cfg.MinCosine = DefaultMinCosine
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &EmbeddingMatcher{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "embedding_matcher")),
	}
}

// Match returns accepted candidates for the given source titles, in source
// order. Sources or targets without a vector are skipped; a missing embedding
// is not a failure, those titles simply stay unmatched this pass.
func (m *EmbeddingMatcher) Match(sources, targets []string, vectors map[string][]float64, tc *text.Cache) []domain.MatchCandidate {
	if len(vectors) == 0 {
		return nil
	}

	unit := make(map[string][]float64, len(vectors))
	embedded := make([]string, 0, len(targets))
	for _, tgt := range targets {
		vec, ok := vectors[tgt]
		if !ok {
			continue
		}
		unit[tgt] = normalize(vec)
		embedded = append(embedded, tgt)
	}
	if len(embedded) == 0 {
		return nil
	}
	index := buildTokenIndex(embedded, tc)

	var accepted []domain.MatchCandidate
	for _, src := range sources {
		vec, ok := vectors[src]
		if !ok {
			m.logger.Debug("no vector for source title", slog.String("title", src))
			continue
		}
		if cand, ok := m.bestCandidate(src, normalize(vec), embedded, index, unit, tc); ok {
			accepted = append(accepted, cand)
		}
	}
	return accepted
}

func (m *EmbeddingMatcher) bestCandidate(
	src string,
	srcVec []float64,
	embedded []string,
	index *tokenIndex,
	unit map[string][]float64,
	tc *text.Cache,
) (domain.MatchCandidate, bool) {
	// Token-overlap prefilter keeps the comparison count manageable; when a
	// paraphrase shares no token at all, fall back to the full target set.
	candidates := index.lookup(tc.Tokens(src), m.cfg.MaxCandidates)
	if len(candidates) == 0 {
		candidates = embedded
		if len(candidates) > m.cfg.MaxCandidates {
			candidates = m.rankByEntityOverlap(src, candidates, tc)
		}
	}

	type scored struct {
		title string
		sim   float64
	}
	top := make([]scored, 0, len(candidates))
	for _, tgt := range candidates {
		top = append(top, scored{title: tgt, sim: dot(srcVec, unit[tgt])})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].sim != top[j].sim {
			return top[i].sim > top[j].sim
		}
		return top[i].title < top[j].title
	})
	if len(top) > m.cfg.TopK {
		top = top[:m.cfg.TopK]
	}

	srcEntities := tc.Entities(src)
	srcNumbers := tc.Numbers(src)
	for _, cand := range top {
		if cand.sim < m.cfg.MinCosine {
			break
		}
		if !text.SameNumberWindow(srcNumbers, tc.Numbers(cand.title)) {
			continue
		}
		tgtEntities := tc.Entities(cand.title)
		if len(srcEntities) > 0 && len(tgtEntities) > 0 &&
			srcEntities.IntersectCount(tgtEntities) == 0 {
			continue
		}
		return domain.MatchCandidate{
			SourceTitle:      src,
			TargetTitle:      cand.title,
			Similarity:       cand.sim,
			EntityGatePassed: true,
		}, true
	}
	return domain.MatchCandidate{}, false
}

// rankByEntityOverlap orders candidates by shared entity tokens with the
// source and truncates to the configured cap.
func (m *EmbeddingMatcher) rankByEntityOverlap(src string, candidates []string, tc *text.Cache) []string {
	srcEntities := tc.Entities(src)
	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool {
		oi := srcEntities.IntersectCount(tc.Entities(ranked[i]))
		oj := srcEntities.IntersectCount(tc.Entities(ranked[j]))
		if oi != oj {
			return oi > oj
		}
		return ranked[i] < ranked[j]
	})
	return ranked[:m.cfg.MaxCandidates]
}

func normalize(vec []float64) []float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float64, len(vec))
	for i, x := range vec {
		out[i] = x / norm
	}
	return out
}

// dot is the cosine similarity of two unit vectors. Mismatched lengths score
// zero rather than failing: vectors are opaque and a provider change
// mid-cache must not abort a pass.
func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
