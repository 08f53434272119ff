// Package similarity holds the cheap text heuristics the candidate scorer
// uses: token overlap between free-text descriptions and comparison of
// reference identifiers such as check numbers or invoice ids.
package similarity

import (
	"strings"
	"unicode"
)

// minPrefixLen is the shortest token allowed to count as an abbreviation
const minPrefixLen = 3

// Tokenize lower-cases s, removes non-alphanumerics and splits on whitespace.
// Single-character tokens are dropped; repeats are kept.
func Tokenize(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, s)

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len([]rune(tok)) < 2 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// TextSimilarity scores two descriptions in [0, 1].
//
// Every token of a that also appears in b counts 1, repeats included. Each
// (a, b) token pair where neither token has an exact partner on the other
// side and the shorter one, at least three characters, begins the longer
// ("wal"/"walmart") counts 0.5. The sum is divided by the larger token count
// and capped at 1. Either side empty yields 0.
func TextSimilarity(a, b string) float64 {
	tokensA := Tokenize(a)
	tokensB := Tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setA := toSet(tokensA)
	setB := toSet(tokensB)

	exact, prefix := 0, 0
	for _, ta := range tokensA {
		if setB[ta] {
			exact++
			continue
		}
		for _, tb := range tokensB {
			if !setA[tb] && isPrefixPair(ta, tb) {
				prefix++
			}
		}
	}

	denom := max(len(tokensA), len(tokensB))
	score := (float64(exact) + 0.5*float64(prefix)) / float64(denom)
	return min(score, 1)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

func isPrefixPair(a, b string) bool {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	return len(short) >= minPrefixLen && short != long && strings.HasPrefix(long, short)
}
