// Package rows turns heterogeneous tabular rows into the logical fields the
// matcher scores: amount, date, references and description text.
//
// A Row is a plain key→value map keyed by the column keys of a Schema. The
// Schema says which keys carry which logical type, so nothing here hard-codes
// column names except the debit/credit NettingRule.
//
// Example usage:
//
//	schema := rows.Schema{
//		{Key: "posted", Label: "Posted", Type: rows.ColumnDate},
//		{Key: "amount", Label: "Amount", Type: rows.ColumnAmount},
//		{Key: "memo", Label: "Memo", Type: rows.ColumnText},
//	}
//	amount, ok := rows.AmountFromRow(row, schema)
package rows

import (
	"fmt"
	"strings"
)

// ColumnType is the logical type of a column
type ColumnType string

const (
	ColumnDate      ColumnType = "date"
	ColumnAmount    ColumnType = "amount"
	ColumnText      ColumnType = "text"
	ColumnReference ColumnType = "reference"
)

// Valid reports whether t is one of the known column types
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnDate, ColumnAmount, ColumnText, ColumnReference:
		return true
	}
	return false
}

// ColumnDef describes one column of a source
type ColumnDef struct {
	Key   string     `json:"key" yaml:"key"`
	Label string     `json:"label" yaml:"label"`
	Type  ColumnType `json:"type" yaml:"type"`
}

// DisplayName returns the label, falling back to the key
func (c ColumnDef) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// Schema is the ordered column list of one source
type Schema []ColumnDef

// OfType returns the columns of the given type, in schema order
func (s Schema) OfType(t ColumnType) []ColumnDef {
	var cols []ColumnDef
	for _, c := range s {
		if c.Type == t {
			cols = append(cols, c)
		}
	}
	return cols
}

// Has reports whether the schema defines at least one column of type t
func (s Schema) Has(t ColumnType) bool {
	for _, c := range s {
		if c.Type == t {
			return true
		}
	}
	return false
}

// Validate checks keys are present and unique and types are known
func (s Schema) Validate() error {
	seen := make(map[string]bool, len(s))
	for i, c := range s {
		key := strings.TrimSpace(c.Key)
		if key == "" {
			return fmt.Errorf("column %d: key is required", i)
		}
		if seen[key] {
			return fmt.Errorf("column %d: duplicate key %q", i, key)
		}
		seen[key] = true
		if !c.Type.Valid() {
			return fmt.Errorf("column %q: unknown type %q", key, c.Type)
		}
	}
	return nil
}

// Row is one raw record keyed by column key
type Row map[string]any
