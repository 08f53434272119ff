package rows

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NettingRule maps one amount column's parsed value to its contribution when
// a schema carries several amount columns.
type NettingRule func(col ColumnDef, value float64) float64

// DebitCreditNetting treats keys containing "debit" as +|v| and keys
// containing "credit" as -|v|. Any other column contributes its signed value.
func DebitCreditNetting(col ColumnDef, value float64) float64 {
	key := strings.ToLower(col.Key)
	switch {
	case strings.Contains(key, "debit"):
		return math.Abs(value)
	case strings.Contains(key, "credit"):
		return -math.Abs(value)
	default:
		return value
	}
}

// AmountFromRow extracts the row amount using DebitCreditNetting
func AmountFromRow(row Row, schema Schema) (float64, bool) {
	return AmountFromRowWith(row, schema, DebitCreditNetting)
}

// AmountFromRowWith extracts the row amount.
// A single amount column yields its parsed value. Several amount columns are
// netted through rule, skipping cells that do not parse. ok is false when the
// schema has no amount column or no amount cell parses.
func AmountFromRowWith(row Row, schema Schema, rule NettingRule) (float64, bool) {
	cols := schema.OfType(ColumnAmount)
	switch len(cols) {
	case 0:
		return 0, false
	case 1:
		return ParseAmount(row[cols[0].Key])
	}

	if rule == nil {
		rule = DebitCreditNetting
	}

	total := 0.0
	found := false
	for _, col := range cols {
		v, ok := ParseAmount(row[col.Key])
		if !ok {
			continue
		}
		total += rule(col, v)
		found = true
	}
	if !found {
		return 0, false
	}
	return finite(total)
}

// DateFromRow parses the first date column that yields a date
func DateFromRow(row Row, schema Schema) (time.Time, bool) {
	for _, col := range schema.OfType(ColumnDate) {
		if t, ok := ParseDate(row[col.Key]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// DescriptionFromRow joins all text column values with single spaces
func DescriptionFromRow(row Row, schema Schema) string {
	var parts []string
	for _, col := range schema.OfType(ColumnText) {
		if s := strings.TrimSpace(Stringify(row[col.Key])); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ReferencesFromRow returns the non-empty, trimmed reference column values
func ReferencesFromRow(row Row, schema Schema) []string {
	var refs []string
	for _, col := range schema.OfType(ColumnReference) {
		if s := strings.TrimSpace(Stringify(row[col.Key])); s != "" {
			refs = append(refs, s)
		}
	}
	return refs
}

// Stringify renders a raw cell as text. Integral floats print without a
// fractional part so numeric references such as 10023 stay comparable.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.DateOnly)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
