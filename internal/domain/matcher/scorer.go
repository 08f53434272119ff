package matcher

import (
	"math"
	"time"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
	"github.com/eshaffer321/ledgermatch/internal/domain/similarity"
)

// Component scores
const (
	scoreAmountExact         = 50
	scoreAmountExactInverted = 45
	scoreAmountWithin        = 40
	scoreAmountWithinInv     = 35

	scoreDateSameDay = 25
	scoreDateNextDay = 22
	scoreDateFloor   = 15
	scoreDateNeutral = 10
	scoreDatePerDay  = 2

	scoreReferenceExact    = 30
	scoreReferenceMismatch = -5

	// MaxScore is the best composite a pair can reach
	MaxScore = scoreAmountExact + scoreDateSameDay + scoreReferenceExact
)

// exactCents is the difference below which amounts count as identical
const exactCents = 0.01

// epsilon absorbs float noise when comparing against a tolerance
const epsilon = 0.0000001

// rowFields are the logical fields extracted once per row
type rowFields struct {
	amount      float64
	hasAmount   bool
	date        time.Time
	hasDate     bool
	references  []string
	description string
}

func extractFields(row rows.Row, schema rows.Schema, netting rows.NettingRule) rowFields {
	f := rowFields{
		references:  rows.ReferencesFromRow(row, schema),
		description: rows.DescriptionFromRow(row, schema),
	}
	f.amount, f.hasAmount = rows.AmountFromRowWith(row, schema, netting)
	f.date, f.hasDate = rows.DateFromRow(row, schema)
	return f
}

// Scorer computes composite candidate scores for one source pair
type Scorer struct {
	schemaA         rows.Schema
	schemaB         rows.Schema
	netting         rows.NettingRule
	amountTolerance float64
	dateWindow      int
	useReferences   bool
}

// NewScorer resolves tolerances and windows for a source pair
func NewScorer(a, b SourceConfig, rules MatchingRules, netting rows.NettingRule) *Scorer {
	if netting == nil {
		netting = rows.DebitCreditNetting
	}
	return &Scorer{
		schemaA:         a.Columns,
		schemaB:         b.Columns,
		netting:         netting,
		amountTolerance: rules.amountToleranceFor(columnKeys(a.Columns, b.Columns, rows.ColumnAmount)),
		dateWindow:      rules.dateWindowFor(columnKeys(a.Columns, b.Columns, rows.ColumnDate)),
		useReferences:   a.Columns.Has(rows.ColumnReference) && b.Columns.Has(rows.ColumnReference),
	}
}

// columnKeys lists A's keys of type t followed by B's
func columnKeys(a, b rows.Schema, t rows.ColumnType) []string {
	var keys []string
	for _, c := range a.OfType(t) {
		keys = append(keys, c.Key)
	}
	for _, c := range b.OfType(t) {
		keys = append(keys, c.Key)
	}
	return keys
}

// Score scores rowA against rowB. ok is false when a hard gate rejects the pair.
func (s *Scorer) Score(rowA, rowB rows.Row) (CandidateScore, bool) {
	return s.score(
		extractFields(rowA, s.schemaA, s.netting),
		extractFields(rowB, s.schemaB, s.netting),
	)
}

func (s *Scorer) score(a, b rowFields) (CandidateScore, bool) {
	var c CandidateScore

	// Amount gate
	if !a.hasAmount || !b.hasAmount {
		return c, false
	}
	direct := math.Abs(a.amount - b.amount)
	inverted := math.Abs(a.amount + b.amount)
	directOK := direct <= s.amountTolerance+epsilon
	invertedOK := inverted <= s.amountTolerance+epsilon
	if !directOK && !invertedOK {
		return c, false
	}

	switch {
	case directOK && direct < exactCents:
		c.AmountScore = scoreAmountExact
	case invertedOK && inverted < exactCents:
		c.AmountScore = scoreAmountExactInverted
		c.SignInverted = true
	case directOK:
		c.AmountScore = scoreAmountWithin
	default:
		c.AmountScore = scoreAmountWithinInv
		c.SignInverted = true
	}

	// Date gate
	if a.hasDate && b.hasDate {
		days := rows.DaysBetween(a.date, b.date)
		if days > s.dateWindow {
			return c, false
		}
		switch days {
		case 0:
			c.DateScore = scoreDateSameDay
		case 1:
			c.DateScore = scoreDateNextDay
		default:
			c.DateScore = max(scoreDateFloor, scoreDateSameDay-scoreDatePerDay*days)
		}
	} else {
		c.DateScore = scoreDateNeutral
	}

	if s.useReferences {
		c.ReferenceScore = referenceScore(a.references, b.references)
	}
	c.TextScore = textScore(similarity.TextSimilarity(a.description, b.description))

	c.TotalScore = c.AmountScore + c.DateScore + c.ReferenceScore + c.TextScore
	return c, true
}

func referenceScore(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := similarity.CompareReferences(a, b)
	switch m.Type {
	case similarity.ReferenceExact:
		return scoreReferenceExact
	case similarity.ReferencePartial:
		return int(math.Round(m.Score * scoreReferenceExact))
	default:
		return scoreReferenceMismatch
	}
}

func textScore(sim float64) int {
	switch {
	case sim >= 0.8:
		return 10
	case sim >= 0.5:
		return 6
	case sim >= 0.2:
		return 3
	default:
		return 0
	}
}

// Confidence converts a composite score into a 0-100 confidence
func Confidence(totalScore int) int {
	pct := math.Round(math.Min(100, float64(totalScore)/MaxScore*100))
	if pct < 0 {
		return 0
	}
	return int(pct)
}
