package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

func outputFixture() (*storage.Run, Sides) {
	schema := rows.Schema{
		{Key: "date", Type: rows.ColumnDate},
		{Key: "amount", Type: rows.ColumnAmount},
		{Key: "memo", Type: rows.ColumnText},
	}
	sides := Sides{
		RowsA: []rows.Row{
			{"date": "2024-03-15", "amount": "100", "memo": "ACME INVOICE 2291"},
			{"date": "2024-03-31", "amount": "-12.5", "memo": "MONTHLY SERVICE FEE"},
			{"date": "2024-03-31", "amount": "0.42", "memo": strings.Repeat("INTEREST ", 10)},
		},
		RowsB: []rows.Row{
			{"date": "2024-03-16", "amount": "-100", "memo": "Acme Corp"},
		},
		SourceA: matcher.SourceConfig{Label: "Bank", Columns: schema},
		SourceB: matcher.SourceConfig{Label: "Ledger", Columns: schema},
	}

	run := &storage.Run{ID: "run-1", RowCountA: 3, RowCountB: 1}
	run.ApplyResult(&matcher.MatchingResult{
		Matched: []matcher.MatchPair{
			{SourceAIndex: 0, SourceBIndex: 0, Confidence: 67, Method: matcher.MethodExact, SignInverted: true},
		},
		UnmatchedA: []int{1, 2},
		UnmatchedB: []int{},
		Exceptions: []matcher.ExceptionClassification{
			{Category: matcher.CategoryInterest, Reason: "interest credit", Source: matcher.SideA, RowIndex: 2},
			{Category: matcher.CategoryBankFee, Reason: "service charge", Source: matcher.SideA, RowIndex: 1},
		},
		Variance: -12.08,
	})
	return run, sides
}

func TestPrintSummary(t *testing.T) {
	run, sides := outputFixture()
	var buf bytes.Buffer

	PrintSummary(&buf, run, sides)
	out := buf.String()

	assert.Contains(t, out, "Rows: A=3 B=1 | Matched=1 | Unmatched: A=2 B=0 | Variance=-12.08")
	assert.Contains(t, out, "2024-03-15  100.00  ACME INVOICE 2291")
	assert.Contains(t, out, "2024-03-16  -100.00  Acme Corp")
	assert.Contains(t, out, "67%")
	assert.Contains(t, out, "exact, inverted")
	assert.Contains(t, out, "bank_fee (1)")
	assert.Contains(t, out, "interest (1)")
	assert.Contains(t, out, "service charge")
	assert.Contains(t, out, "...", "long descriptions are trimmed")
	assert.NotContains(t, out, "Fully reconciled.")
}

func TestPrintSummary_FullyReconciled(t *testing.T) {
	run := &storage.Run{RowCountA: 1, RowCountB: 1}
	run.ApplyResult(&matcher.MatchingResult{
		Matched:    []matcher.MatchPair{{SourceAIndex: 0, SourceBIndex: 0, Confidence: 100, Method: matcher.MethodExact}},
		UnmatchedA: []int{},
		UnmatchedB: []int{},
		Exceptions: []matcher.ExceptionClassification{},
	})
	var buf bytes.Buffer

	PrintSummary(&buf, run, Sides{})

	assert.Contains(t, buf.String(), "A#0  ?")
	assert.Contains(t, buf.String(), "Fully reconciled.")
}

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, "Bank", "Ledger", true)
	assert.Equal(t, "ledgermatch: Bank vs Ledger (deterministic + AI)\n\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	run, _ := outputFixture()
	var buf bytes.Buffer

	require.NoError(t, PrintJSON(&buf, run))

	assert.Contains(t, buf.String(), `"id": "run-1"`)
	assert.Contains(t, buf.String(), `"signInverted": true`)
	assert.Contains(t, buf.String(), `"variance": -12.08`)
}

func TestGroupExceptions_LargestFirst(t *testing.T) {
	groups := groupExceptions([]matcher.ExceptionClassification{
		{Category: matcher.CategoryOther, RowIndex: 0},
		{Category: matcher.CategoryBankFee, RowIndex: 1},
		{Category: matcher.CategoryOther, RowIndex: 2},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, matcher.CategoryOther, groups[0].category)
	assert.Len(t, groups[0].items, 2)
}
