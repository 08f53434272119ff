package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFromRow_SingleColumn(t *testing.T) {
	schema := Schema{
		{Key: "amount", Type: ColumnAmount},
		{Key: "memo", Type: ColumnText},
	}

	got, ok := AmountFromRow(Row{"amount": "(50.00)"}, schema)
	require.True(t, ok)
	assert.InDelta(t, -50.0, got, 0.0001)

	_, ok = AmountFromRow(Row{"amount": "abc"}, schema)
	assert.False(t, ok)
}

func TestAmountFromRow_NettedOverflow(t *testing.T) {
	schema := Schema{
		{Key: "fee", Type: ColumnAmount},
		{Key: "charge", Type: ColumnAmount},
	}

	_, ok := AmountFromRow(Row{"fee": 1.7e308, "charge": 1.7e308}, schema)
	assert.False(t, ok)
}

func TestAmountFromRow_DebitCreditNetting(t *testing.T) {
	schema := Schema{
		{Key: "debit_amount", Type: ColumnAmount},
		{Key: "Credit", Type: ColumnAmount},
	}

	t.Run("debit only", func(t *testing.T) {
		got, ok := AmountFromRow(Row{"debit_amount": "-25.00", "Credit": ""}, schema)
		require.True(t, ok)
		assert.InDelta(t, 25.0, got, 0.0001)
	})

	t.Run("credit only", func(t *testing.T) {
		got, ok := AmountFromRow(Row{"debit_amount": nil, "Credit": "40"}, schema)
		require.True(t, ok)
		assert.InDelta(t, -40.0, got, 0.0001)
	})

	t.Run("both sides net", func(t *testing.T) {
		got, ok := AmountFromRow(Row{"debit_amount": 100.0, "Credit": 30.0}, schema)
		require.True(t, ok)
		assert.InDelta(t, 70.0, got, 0.0001)
	})

	t.Run("nothing parses", func(t *testing.T) {
		_, ok := AmountFromRow(Row{}, schema)
		assert.False(t, ok)
	})
}

func TestAmountFromRowWith_CustomRule(t *testing.T) {
	schema := Schema{
		{Key: "in", Type: ColumnAmount},
		{Key: "out", Type: ColumnAmount},
	}
	outflow := func(col ColumnDef, v float64) float64 {
		if col.Key == "out" {
			return -v
		}
		return v
	}

	got, ok := AmountFromRowWith(Row{"in": 10.0, "out": 4.0}, schema, outflow)
	require.True(t, ok)
	assert.InDelta(t, 6.0, got, 0.0001)
}

func TestAmountFromRow_NoAmountColumn(t *testing.T) {
	_, ok := AmountFromRow(Row{"memo": "x"}, Schema{{Key: "memo", Type: ColumnText}})
	assert.False(t, ok)
}

func TestDescriptionFromRow(t *testing.T) {
	schema := Schema{
		{Key: "payee", Type: ColumnText},
		{Key: "amount", Type: ColumnAmount},
		{Key: "memo", Type: ColumnText},
		{Key: "note", Type: ColumnText},
	}
	row := Row{"payee": " AMZN Mktp ", "amount": 12.0, "memo": "order 123", "note": ""}

	assert.Equal(t, "AMZN Mktp order 123", DescriptionFromRow(row, schema))
}

func TestReferencesFromRow(t *testing.T) {
	schema := Schema{
		{Key: "check", Type: ColumnReference},
		{Key: "ref", Type: ColumnReference},
		{Key: "other", Type: ColumnReference},
	}
	row := Row{"check": 10023.0, "ref": "  INV-88 ", "other": "   "}

	assert.Equal(t, []string{"10023", "INV-88"}, ReferencesFromRow(row, schema))
}

func TestSchema_Validate(t *testing.T) {
	assert.NoError(t, Schema{{Key: "a", Type: ColumnAmount}}.Validate())
	assert.Error(t, Schema{{Key: "", Type: ColumnAmount}}.Validate())
	assert.Error(t, Schema{{Key: "a", Type: ColumnAmount}, {Key: "a", Type: ColumnText}}.Validate())
	assert.Error(t, Schema{{Key: "a", Type: "currency"}}.Validate())
}
