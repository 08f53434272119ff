package matcher

import "sort"

// Resolver defaults
const (
	DefaultMinAssignScore = 55
	DefaultMaxCandidates  = 3
)

// rowCandidates is the ranked shortlist of one A-row
type rowCandidates struct {
	aIndex     int
	candidates []CandidateScore
}

// Resolve turns per-row candidate lists into a one-to-one matching.
//
// Each A-row keeps its top maxCandidates candidates. A-rows are visited in
// order of their best candidate's score, and each takes the first candidate
// whose B-row is still free and whose score reaches minScore. This is a
// greedy pass, not an optimal assignment: a row that loses its favourite
// falls back to its next-best shortlisted option or stays unmatched.
//
// candidates is indexed by A-row. The returned slices flag which A and B
// rows were matched.
func Resolve(candidates [][]CandidateScore, bCount, minScore, maxCandidates int) ([]MatchPair, []bool, []bool) {
	matchedA := make([]bool, len(candidates))
	matchedB := make([]bool, bCount)

	ranked := make([]rowCandidates, 0, len(candidates))
	for aIndex, list := range candidates {
		if len(list) == 0 {
			continue
		}
		sorted := make([]CandidateScore, len(list))
		copy(sorted, list)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].TotalScore > sorted[j].TotalScore
		})
		if len(sorted) > maxCandidates {
			sorted = sorted[:maxCandidates]
		}
		ranked = append(ranked, rowCandidates{aIndex: aIndex, candidates: sorted})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].candidates[0].TotalScore > ranked[j].candidates[0].TotalScore
	})

	var pairs []MatchPair
	for _, row := range ranked {
		if matchedA[row.aIndex] {
			continue
		}
		for _, c := range row.candidates {
			if c.BIndex < 0 || c.BIndex >= bCount || matchedB[c.BIndex] {
				continue
			}
			if c.TotalScore < minScore {
				continue
			}
			matchedA[row.aIndex] = true
			matchedB[c.BIndex] = true
			pairs = append(pairs, MatchPair{
				SourceAIndex: row.aIndex,
				SourceBIndex: c.BIndex,
				Confidence:   Confidence(c.TotalScore),
				Method:       MethodExact,
				SignInverted: c.SignInverted,
			})
			break
		}
	}

	return pairs, matchedA, matchedB
}
