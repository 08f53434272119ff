package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledgermatch/internal/domain/matcher"
	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
	"github.com/eshaffer321/ledgermatch/internal/infrastructure/storage"
)

// maxDescription trims long descriptions in table output
const maxDescription = 40

// Sides bundles what the printer needs to describe rows of both sources
type Sides struct {
	RowsA   []rows.Row
	RowsB   []rows.Row
	SourceA matcher.SourceConfig
	SourceB matcher.SourceConfig
}

// PrintHeader prints the application header
func PrintHeader(w io.Writer, sourceA, sourceB string, fuzzy bool) {
	mode := "deterministic"
	if fuzzy {
		mode = "deterministic + AI"
	}
	fmt.Fprintf(w, "ledgermatch: %s vs %s (%s)\n\n", sourceA, sourceB, mode)
}

// PrintSummary prints the run counts, matched pairs and exceptions
func PrintSummary(w io.Writer, run *storage.Run, sides Sides) {
	fmt.Fprintf(w, "Rows: A=%d B=%d | Matched=%d | Unmatched: A=%d B=%d | Variance=%s\n",
		run.RowCountA, run.RowCountB,
		run.MatchedCount,
		run.UnmatchedACount, run.UnmatchedBCount,
		money(run.Variance))
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if run.Result == nil {
		return
	}

	if len(run.Result.Matched) > 0 {
		fmt.Fprintln(w, "Matched:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, pair := range run.Result.Matched {
			a := describe(sides.RowsA, pair.SourceAIndex, sides.SourceA.Columns)
			b := describe(sides.RowsB, pair.SourceBIndex, sides.SourceB.Columns)
			method := string(pair.Method)
			if pair.SignInverted {
				method += ", inverted"
			}
			fmt.Fprintf(tw, "  A#%d\t%s\t<->\tB#%d\t%s\t%d%%\t%s\n",
				pair.SourceAIndex, a, pair.SourceBIndex, b, pair.Confidence, method)
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}

	if len(run.Result.Exceptions) > 0 {
		fmt.Fprintln(w, "Exceptions:")
		for _, group := range groupExceptions(run.Result.Exceptions) {
			fmt.Fprintf(w, "  %s (%d)\n", group.category, len(group.items))
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, e := range group.items {
				rowsOf, schema := sides.RowsA, sides.SourceA.Columns
				if e.Source == matcher.SideB {
					rowsOf, schema = sides.RowsB, sides.SourceB.Columns
				}
				fmt.Fprintf(tw, "    %s#%d\t%s\t%s\n", e.Source, e.RowIndex, describe(rowsOf, e.RowIndex, schema), e.Reason)
			}
			_ = tw.Flush()
		}
		fmt.Fprintln(w)
	}

	if run.Variance == 0 && run.UnmatchedACount == 0 && run.UnmatchedBCount == 0 {
		fmt.Fprintln(w, "Fully reconciled.")
	}
}

// PrintJSON writes the run, including its result, as indented JSON
func PrintJSON(w io.Writer, run *storage.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

type exceptionGroup struct {
	category matcher.Category
	items    []matcher.ExceptionClassification
}

// groupExceptions groups by category, largest group first
func groupExceptions(exceptions []matcher.ExceptionClassification) []exceptionGroup {
	byCategory := make(map[matcher.Category][]matcher.ExceptionClassification)
	for _, e := range exceptions {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}
	groups := make([]exceptionGroup, 0, len(byCategory))
	for category, items := range byCategory {
		groups = append(groups, exceptionGroup{category: category, items: items})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].items) != len(groups[j].items) {
			return len(groups[i].items) > len(groups[j].items)
		}
		return groups[i].category < groups[j].category
	})
	return groups
}

// describe renders "date  amount  description" for one row
func describe(rs []rows.Row, index int, schema rows.Schema) string {
	if index < 0 || index >= len(rs) {
		return "?"
	}
	row := rs[index]

	parts := make([]string, 0, 3)
	if d, ok := rows.DateFromRow(row, schema); ok {
		parts = append(parts, d.Format("2006-01-02"))
	}
	if amt, ok := rows.AmountFromRow(row, schema); ok {
		parts = append(parts, money(amt))
	}
	if desc := rows.DescriptionFromRow(row, schema); desc != "" {
		if r := []rune(desc); len(r) > maxDescription {
			desc = string(r[:maxDescription-3]) + "..."
		}
		parts = append(parts, desc)
	}
	return strings.Join(parts, "  ")
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
