// Package validator checks matching results for internal consistency.
//
// A result is consistent when every row of both sources is accounted for
// exactly once: either as one side of a single match, or as an unmatched
// row carrying exactly one exception. Results that fail this check are
// never recorded as completed runs.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
)

// ResultValidation contains the outcome of validating a matching result.
type ResultValidation struct {
	// Valid is true if no problems were found
	Valid bool

	// Problems lists every inconsistency, in check order
	Problems []string

	// Reason joins Problems into one line (empty if valid)
	Reason string
}

// ValidateResult checks res against the row counts of both sources.
//
// The checks are:
//   - matched indices are in range and no row is matched twice
//   - confidences lie in 0-100
//   - UnmatchedA and UnmatchedB are exactly the unmatched rows, ascending
//   - each unmatched row has exactly one exception with a known category,
//     and no exception points at a matched row
func ValidateResult(res *matcher.MatchingResult, rowsA, rowsB int) *ResultValidation {
	if res == nil {
		return invalid([]string{"result is nil"})
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	matchedA := make([]bool, rowsA)
	matchedB := make([]bool, rowsB)
	for i, pair := range res.Matched {
		switch {
		case pair.SourceAIndex < 0 || pair.SourceAIndex >= rowsA:
			addf("match %d: source A index %d out of range", i, pair.SourceAIndex)
		case matchedA[pair.SourceAIndex]:
			addf("match %d: source A row %d matched twice", i, pair.SourceAIndex)
		default:
			matchedA[pair.SourceAIndex] = true
		}
		switch {
		case pair.SourceBIndex < 0 || pair.SourceBIndex >= rowsB:
			addf("match %d: source B index %d out of range", i, pair.SourceBIndex)
		case matchedB[pair.SourceBIndex]:
			addf("match %d: source B row %d matched twice", i, pair.SourceBIndex)
		default:
			matchedB[pair.SourceBIndex] = true
		}
		if pair.Confidence < 0 || pair.Confidence > 100 {
			addf("match %d: confidence %d outside 0-100", i, pair.Confidence)
		}
	}

	checkUnmatched := func(side matcher.Side, got []int, matched []bool) {
		want := complement(matched)
		if !sort.IntsAreSorted(got) || !equalInts(got, want) {
			addf("unmatched %s rows %v, expected %v", side, got, want)
		}
	}
	checkUnmatched(matcher.SideA, res.UnmatchedA, matchedA)
	checkUnmatched(matcher.SideB, res.UnmatchedB, matchedB)

	type rowKey struct {
		side  matcher.Side
		index int
	}
	seen := make(map[rowKey]bool, len(res.Exceptions))
	for _, e := range res.Exceptions {
		key := rowKey{e.Source, e.RowIndex}
		var matched []bool
		switch e.Source {
		case matcher.SideA:
			matched = matchedA
		case matcher.SideB:
			matched = matchedB
		default:
			addf("exception for unknown source %q", e.Source)
			continue
		}
		switch {
		case e.RowIndex < 0 || e.RowIndex >= len(matched):
			addf("exception %s#%d: row out of range", e.Source, e.RowIndex)
		case matched[e.RowIndex]:
			addf("exception %s#%d: row is matched", e.Source, e.RowIndex)
		case seen[key]:
			addf("exception %s#%d: duplicate", e.Source, e.RowIndex)
		}
		if !e.Category.Valid() {
			addf("exception %s#%d: unknown category %q", e.Source, e.RowIndex, e.Category)
		}
		seen[key] = true
	}
	for _, i := range complement(matchedA) {
		if !seen[rowKey{matcher.SideA, i}] {
			addf("unmatched A#%d has no exception", i)
		}
	}
	for _, i := range complement(matchedB) {
		if !seen[rowKey{matcher.SideB, i}] {
			addf("unmatched B#%d has no exception", i)
		}
	}

	if len(problems) > 0 {
		return invalid(problems)
	}
	return &ResultValidation{Valid: true}
}

func invalid(problems []string) *ResultValidation {
	return &ResultValidation{
		Valid:    false,
		Problems: problems,
		Reason:   strings.Join(problems, "; "),
	}
}

func complement(matched []bool) []int {
	out := []int{}
	for i, m := range matched {
		if !m {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
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
