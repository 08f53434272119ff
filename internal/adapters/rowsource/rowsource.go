// Package rowsource loads tabular files into rows keyed by column key.
//
// The first non-blank record is the header. Each schema column is located by
// its key or its label, case-insensitively, so files exported with either
// naming work without renaming. Columns still unresolved after that take the
// closest unclaimed header by edit distance, so "Posted Dt" finds
// "Posted Date".
package rowsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than csv and xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrColumnNotFound is returned when a schema column has no header
	ErrColumnNotFound = errors.New("column not found in header")

	// ErrNoHeader is returned for files with no records at all
	ErrNoHeader = errors.New("file has no header row")
)

// minHeaderSimilarity is the edit-distance similarity a header needs to
// stand in for a column name
const minHeaderSimilarity = 0.8

// Load reads path as CSV or XLSX depending on its extension
func Load(path string, schema rows.Schema) ([]rows.Row, error) {
	return LoadSheet(path, "", schema)
}

// LoadSheet is Load with an explicit workbook sheet. sheet is ignored for
// CSV files; empty means the first sheet.
func LoadSheet(path, sheet string, schema rows.Schema) ([]rows.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var records [][]string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		records, err = ReadCSV(file)
	case ".xlsx", ".xlsm":
		records, err = ReadXLSX(file, sheet)
	default:
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, err := FromRecords(records, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ReadCSV reads every record; ragged rows are allowed
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// ReadXLSX reads every row of sheet, or of the first sheet when sheet is empty
func ReadXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	return f.GetRows(sheet)
}

// FromRecords maps records onto schema using the first non-blank record as
// the header. Blank records are skipped and missing trailing cells read as "".
func FromRecords(records [][]string, schema rows.Schema) ([]rows.Row, error) {
	start := 0
	for start < len(records) && blank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrNoHeader
	}

	names := make([]string, len(records[start]))
	header := make(map[string]int, len(names))
	for i, name := range records[start] {
		names[i] = normalise(name)
		if _, dup := header[names[i]]; !dup {
			header[names[i]] = i
		}
	}

	positions := make([]int, len(schema))
	claimed := make(map[int]bool, len(schema))
	var unresolved []int
	// a header serves one column; later columns fall through to the label,
	// then to the closest unclaimed header
	lookup := func(name string) (int, bool) {
		pos, ok := header[normalise(name)]
		return pos, ok && !claimed[pos]
	}
	for i, col := range schema {
		pos, ok := lookup(col.Key)
		if !ok && col.Label != "" {
			pos, ok = lookup(col.Label)
		}
		if !ok {
			unresolved = append(unresolved, i)
			continue
		}
		positions[i] = pos
		claimed[pos] = true
	}

	for _, i := range unresolved {
		col := schema[i]
		pos, ok := closestHeader(names, claimed, normalise(col.Key), normalise(col.Label))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, col.DisplayName())
		}
		positions[i] = pos
		claimed[pos] = true
	}

	out := make([]rows.Row, 0, len(records)-start-1)
	for _, record := range records[start+1:] {
		if blank(record) {
			continue
		}
		row := make(rows.Row, len(schema))
		for i, col := range schema {
			value := ""
			if positions[i] < len(record) {
				value = strings.TrimSpace(record[positions[i]])
			}
			row[col.Key] = value
		}
		out = append(out, row)
	}
	return out, nil
}

// closestHeader returns the unclaimed header most similar to any of
// candidates. A tie for best is ambiguous and resolves nothing.
func closestHeader(names []string, claimed map[int]bool, candidates ...string) (int, bool) {
	best, bestPos, tied := 0.0, -1, false
	for pos, name := range names {
		if claimed[pos] || name == "" {
			continue
		}
		for _, c := range candidates {
			if c == "" {
				continue
			}
			sim := similarity(name, c)
			switch {
			case sim > best:
				best, bestPos, tied = sim, pos, false
			case sim == best && pos != bestPos:
				tied = true
			}
		}
	}
	if bestPos < 0 || tied || best < minHeaderSimilarity {
		return 0, false
	}
	return bestPos, true
}

func similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")))
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
