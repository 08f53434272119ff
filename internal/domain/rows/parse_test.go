package rows

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"plain float", 100.25, 100.25, true},
		{"int", 42, 42, true},
		{"plain string", "100.25", 100.25, true},
		{"dollar with thousands", "$1,234.56", 1234.56, true},
		{"negative string", "-45.10", -45.10, true},
		{"parenthesized", "(123.45)", -123.45, true},
		{"parenthesized with currency", "($1,000.00)", -1000, true},
		{"euro and spaces", " € 12 500.00 ", 12500, true},
		{"pound", "£9.99", 9.99, true},
		{"json number", json.Number("17.5"), 17.5, true},
		{"trailing minus", "100-", -100, true},
		{"trailing minus with thousands", "1,250.00-", -1250, true},
		{"credit suffix", "100 CR", -100, true},
		{"credit suffix lower case", "$42.10cr", -42.10, true},
		{"debit suffix", "100 DR", 100, true},
		{"debit suffix on negative", "-100 DR", 100, true},
		{"suffix only", "CR", 0, false},
		{"exponent overflow", "1e400", 0, false},
		{"json exponent overflow", json.Number("-1e400"), 0, false},
		{"empty", "", 0, false},
		{"dash only", "-", 0, false},
		{"letters", "N/A", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}

func TestParseDate_TextualForms(t *testing.T) {
	want := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"03/07/2024", "07.03.2024", "2024-03-07", "Mar 7, 2024", "7 Mar 2024"} {
		t.Run(input, func(t *testing.T) {
			got, ok := ParseDate(input)
			require.True(t, ok)
			assert.Equal(t, want.Format(time.DateOnly), got.Format(time.DateOnly))
		})
	}
}

func TestParseDate_RejectsImpossibleDates(t *testing.T) {
	_, ok := ParseDate("02/30/2024")
	assert.False(t, ok)

	_, ok = ParseDate("13/01/2024")
	assert.False(t, ok)

	_, ok = ParseDate("not a date")
	assert.False(t, ok)

	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestParseDate_Numeric(t *testing.T) {
	t.Run("excel serial", func(t *testing.T) {
		// 45292 is 2024-01-01 in the 1900 date system
		got, ok := ParseDate(45292.0)
		require.True(t, ok)
		assert.Equal(t, "2024-01-01", got.Format(time.DateOnly))
	})

	t.Run("excel serial as string", func(t *testing.T) {
		got, ok := ParseDate("45292")
		require.True(t, ok)
		assert.Equal(t, "2024-01-01", got.Format(time.DateOnly))
	})

	t.Run("unix seconds", func(t *testing.T) {
		got, ok := ParseDate(int64(1704067200))
		require.True(t, ok)
		assert.Equal(t, "2024-01-01", got.Format(time.DateOnly))
	})

	t.Run("unix millis", func(t *testing.T) {
		got, ok := ParseDate(float64(1704067200000))
		require.True(t, ok)
		assert.Equal(t, "2024-01-01", got.Format(time.DateOnly))
	})

	t.Run("implausible magnitude", func(t *testing.T) {
		_, ok := ParseDate(12.0)
		assert.False(t, ok)
	})
}

func TestParseDate_TimeValue(t *testing.T) {
	now := time.Date(2025, 10, 10, 14, 0, 0, 0, time.UTC)
	got, ok := ParseDate(now)
	require.True(t, ok)
	assert.Equal(t, now, got)

	_, ok = ParseDate(time.Time{})
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 10, 10, 23, 0, 0, 0, time.UTC)
	b := time.Date(2025, 10, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, 1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
