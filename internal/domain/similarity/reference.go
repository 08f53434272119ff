package similarity

import (
	"strings"
	"unicode"
)

// ReferenceMatchType grades how two reference lists relate
type ReferenceMatchType string

const (
	ReferenceExact   ReferenceMatchType = "exact"
	ReferencePartial ReferenceMatchType = "partial"
	ReferenceNone    ReferenceMatchType = "none"
)

// ReferenceMatch is the outcome of CompareReferences
type ReferenceMatch struct {
	Type  ReferenceMatchType
	Score float64
}

// minReferenceLen applies to both substring containment and digit cores
const minReferenceLen = 3

// CompareReferences compares two reference lists, trying each rule across all
// pairs before falling through to the next:
//
//  1. case-sensitive equality       → exact 1.0
//  2. case-insensitive equality     → exact 0.95
//  3. containment (shorter ≥3 runes) → partial 0.7
//  4. equal digit-only cores (≥3)   → partial 0.6
func CompareReferences(a, b []string) ReferenceMatch {
	if len(a) == 0 || len(b) == 0 {
		return ReferenceMatch{Type: ReferenceNone}
	}

	rules := []struct {
		match ReferenceMatch
		test  func(x, y string) bool
	}{
		{ReferenceMatch{ReferenceExact, 1.0}, func(x, y string) bool { return x == y }},
		{ReferenceMatch{ReferenceExact, 0.95}, strings.EqualFold},
		{ReferenceMatch{ReferencePartial, 0.7}, contains},
		{ReferenceMatch{ReferencePartial, 0.6}, sameDigits},
	}

	for _, rule := range rules {
		for _, x := range a {
			for _, y := range b {
				if rule.test(x, y) {
					return rule.match
				}
			}
		}
	}
	return ReferenceMatch{Type: ReferenceNone}
}

func contains(x, y string) bool {
	short, long := strings.ToLower(x), strings.ToLower(y)
	if len([]rune(short)) > len([]rune(long)) {
		short, long = long, short
	}
	return len([]rune(short)) >= minReferenceLen && strings.Contains(long, short)
}

func sameDigits(x, y string) bool {
	dx, dy := digitsOnly(x), digitsOnly(y)
	return len(dx) >= minReferenceLen && dx == dy
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
