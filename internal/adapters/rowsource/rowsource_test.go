package rowsource

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledgermatch/internal/domain/rows"
)

var bankSchema = rows.Schema{
	{Key: "posted", Label: "Posted Date", Type: rows.ColumnDate},
	{Key: "amount", Type: rows.ColumnAmount},
	{Key: "memo", Label: "Description", Type: rows.ColumnText},
}

const bankCSV = "\uFEFFPosted Date,Amount,Description,Balance\n" +
	"2024-03-15,-54.99,AMZN Mktp US,1000.00\n" +
	",,,\n" +
	"2024-03-16,\"1,200.00\",Payroll\n"

func TestFromRecords_CSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(bankCSV))
	require.NoError(t, err)

	got, err := FromRecords(records, bankSchema)
	require.NoError(t, err)

	assert.Equal(t, []rows.Row{
		{"posted": "2024-03-15", "amount": "-54.99", "memo": "AMZN Mktp US"},
		{"posted": "2024-03-16", "amount": "1,200.00", "memo": "Payroll"},
	}, got)
}

func TestFromRecords_MissingColumn(t *testing.T) {
	records := [][]string{{"Posted Date", "Amount"}, {"2024-03-15", "1"}}

	_, err := FromRecords(records, bankSchema)

	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.ErrorContains(t, err, "Description")
}

func TestFromRecords_NoHeader(t *testing.T) {
	_, err := FromRecords([][]string{{"", " "}}, bankSchema)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestFromRecords_ShortRow(t *testing.T) {
	records := [][]string{{"posted", "amount", "memo"}, {"2024-03-15", "10"}}

	got, err := FromRecords(records, bankSchema)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0]["memo"])
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Posted Date", "Amount", "Description"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024-03-15", "-54.99", "AMZN Mktp US"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "")
	require.NoError(t, err)

	got, err := FromRecords(records, bankSchema)
	require.NoError(t, err)
	assert.Equal(t, []rows.Row{{"posted": "2024-03-15", "amount": "-54.99", "memo": "AMZN Mktp US"}}, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(bankCSV), 0o644))

	got, err := Load(csvPath, bankSchema)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = Load(filepath.Join(dir, "bank.json"), bankSchema)
	assert.Error(t, err)

	jsonPath := filepath.Join(dir, "bank.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o644))
	_, err = Load(jsonPath, bankSchema)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadSheet_NamedSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("March")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("March", "A1", &[]interface{}{"Posted Date", "Amount", "Description"}))
	require.NoError(t, f.SetSheetRow("March", "A2", &[]interface{}{"2024-03-31", "2.15", "Interest"}))

	path := filepath.Join(t.TempDir(), "bank.xlsx")
	require.NoError(t, f.SaveAs(path))

	got, err := LoadSheet(path, "March", bankSchema)
	require.NoError(t, err)
	assert.Equal(t, []rows.Row{{"posted": "2024-03-31", "amount": "2.15", "memo": "Interest"}}, got)

	// The first sheet is empty, so it has no header
	_, err = Load(path, bankSchema)
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestFromRecords_CloseHeader(t *testing.T) {
	records := [][]string{
		{"Posted Dt", "Amount", "Descripton"},
		{"2024-03-15", "10", "Coffee"},
	}

	got, err := FromRecords(records, bankSchema)

	require.NoError(t, err)
	assert.Equal(t, []rows.Row{{"posted": "2024-03-15", "amount": "10", "memo": "Coffee"}}, got)
}

func TestFromRecords_AmbiguousHeader(t *testing.T) {
	schema := rows.Schema{{Key: "amount", Type: rows.ColumnAmount}}
	records := [][]string{{"amount1", "amount2"}, {"1", "2"}}

	_, err := FromRecords(records, schema)

	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestFromRecords_HeaderServesOneColumn(t *testing.T) {
	t.Run("second claim falls through to label", func(t *testing.T) {
		schema := rows.Schema{
			{Key: "debit", Label: "Amount", Type: rows.ColumnAmount},
			{Key: "amount", Label: "Charge", Type: rows.ColumnAmount},
		}
		records := [][]string{{"Amount", "Charge"}, {"10.00", "2.50"}}

		got, err := FromRecords(records, schema)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rows.Row{"debit": "10.00", "amount": "2.50"}, got[0])
	})

	t.Run("no unclaimed header left", func(t *testing.T) {
		schema := rows.Schema{
			{Key: "amount", Type: rows.ColumnAmount},
			{Key: "value", Label: "Amount", Type: rows.ColumnAmount},
		}
		records := [][]string{{"Amount", "Memo"}, {"10.00", "coffee"}}

		_, err := FromRecords(records, schema)

		assert.ErrorIs(t, err, ErrColumnNotFound)
	})
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("amount", "amount"))
	assert.InDelta(t, 0.818, similarity("posted dt", "posted date"), 0.001)
	assert.Equal(t, 0.0, similarity("", ""))
}
