// Package text provides the title normalization primitives used by the
// matching engine: tokenization, named-entity candidate extraction, and
// numeric-window extraction. All functions are pure and total; the same title
// always yields the same result, so callers may memoize per pass (see Cache).
package text

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	tokenRe  = regexp.MustCompile(`[a-z0-9]{3,}`)
	numberRe = regexp.MustCompile(`\d{1,4}`)
)

// TokenSet is a set of lower-case tokens.
type TokenSet map[string]struct{}

// Contains reports membership.
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// IntersectCount returns the number of tokens present in both sets.
func (s TokenSet) IntersectCount(other TokenSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for tok := range small {
		if large.Contains(tok) {
			n++
		}
	}
	return n
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b TokenSet) float64 {
	inter := a.IntersectCount(b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Tokenize lower-cases the title and returns every alphanumeric run of
// length >= 3 as a token.
func Tokenize(title string) TokenSet {
	set := TokenSet{}
	for _, tok := range tokenRe.FindAllString(strings.ToLower(title), -1) {
		set[tok] = struct{}{}
	}
	return set
}

// ExtractEntities returns probable proper-noun tokens from the title:
// capitalized words taken from the original-case text, lower-cased, minus the
// stop-list. Capitalization alone is a weak signal: platform names and
// category labels ("Global", "Search", "Actors") are capitalized in market
// titles without naming a subject, so they must not count as matching
// evidence.
func ExtractEntities(title string) TokenSet {
	set := TokenSet{}
	for _, word := range strings.FieldsFunc(title, isWordBoundary) {
		runes := []rune(word)
		if len(runes) < 3 || !unicode.IsUpper(runes[0]) {
			continue
		}
		lower := strings.ToLower(word)
		if stopWords.Contains(lower) {
			continue
		}
		set[lower] = struct{}{}
	}
	return set
}

// NumberWindow returns the sequence of numbers (1-4 digits each) appearing in
// the title, in order. Two titles that both carry numbers (years, ranks,
// strike thresholds) describe the same event only when the sequences match.
func NumberWindow(title string) []int {
	matches := numberRe.FindAllString(title, -1)
	if len(matches) == 0 {
		return nil
	}
	nums := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}

// SameNumberWindow reports whether the two windows are equal. Empty windows
// never veto: the guard only applies when both titles carry numbers.
func SameNumberWindow(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
