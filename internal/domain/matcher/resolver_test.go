package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_GreedyByBestScore(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 0, TotalScore: 70}},
		{{BIndex: 0, TotalScore: 105}},
	}

	pairs, matchedA, matchedB := Resolve(candidates, 1, DefaultMinAssignScore, DefaultMaxCandidates)

	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].SourceAIndex)
	assert.Equal(t, 0, pairs[0].SourceBIndex)
	assert.Equal(t, 100, pairs[0].Confidence)
	assert.Equal(t, MethodExact, pairs[0].Method)
	assert.Equal(t, []bool{false, true}, matchedA)
	assert.Equal(t, []bool{true}, matchedB)
}

func TestResolve_LoserFallsBackToNextCandidate(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 0, TotalScore: 105}, {BIndex: 1, TotalScore: 71}},
		{{BIndex: 0, TotalScore: 70}, {BIndex: 1, TotalScore: 71}},
	}

	pairs, _, _ := Resolve(candidates, 2, DefaultMinAssignScore, DefaultMaxCandidates)

	require.Len(t, pairs, 2)
	assert.Equal(t, MatchPair{SourceAIndex: 0, SourceBIndex: 0, Confidence: 100, Method: MethodExact}, pairs[0])
	assert.Equal(t, MatchPair{SourceAIndex: 1, SourceBIndex: 1, Confidence: 68, Method: MethodExact}, pairs[1])
}

func TestResolve_OnlyTopCandidatesConsidered(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 3, TotalScore: 60}, {BIndex: 0, TotalScore: 90}, {BIndex: 1, TotalScore: 80}, {BIndex: 2, TotalScore: 70}},
		{{BIndex: 0, TotalScore: 100}},
		{{BIndex: 1, TotalScore: 99}},
		{{BIndex: 2, TotalScore: 98}},
	}

	pairs, matchedA, matchedB := Resolve(candidates, 4, DefaultMinAssignScore, DefaultMaxCandidates)

	assert.Len(t, pairs, 3)
	assert.False(t, matchedA[0], "B3 sits outside A0's top three")
	assert.False(t, matchedB[3])
}

func TestResolve_BelowThreshold(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 0, TotalScore: 54}},
	}

	pairs, matchedA, matchedB := Resolve(candidates, 1, DefaultMinAssignScore, DefaultMaxCandidates)

	assert.Empty(t, pairs)
	assert.False(t, matchedA[0])
	assert.False(t, matchedB[0])
}

func TestResolve_TiesKeepRowOrder(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 0, TotalScore: 75}},
		{{BIndex: 0, TotalScore: 75}},
	}

	pairs, _, _ := Resolve(candidates, 1, DefaultMinAssignScore, DefaultMaxCandidates)

	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].SourceAIndex)
}

func TestResolve_SignInversionCarried(t *testing.T) {
	candidates := [][]CandidateScore{
		{{BIndex: 0, TotalScore: 70, SignInverted: true}},
	}

	pairs, _, _ := Resolve(candidates, 1, DefaultMinAssignScore, DefaultMaxCandidates)

	require.Len(t, pairs, 1)
	assert.True(t, pairs[0].SignInverted)
}

func TestVariance(t *testing.T) {
	assert.Equal(t, 20.0, Variance([]float64{12.50, 17.50}, []float64{10.00}))
	assert.Equal(t, -0.3, Variance([]float64{0.1, 0.2}, []float64{0.3, 0.3}))
	assert.Equal(t, 0.0, Variance(nil, nil))
}
