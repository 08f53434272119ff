package rows

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// excelEpoch is day zero of the Excel 1900 date system (with the leap-year bug folded in)
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Magnitude ranges used to sniff numeric dates
const (
	excelSerialMin = 20000 // 1954-10-03
	excelSerialMax = 80000 // 2119-01-10
	unixSecondsMin = 1e9   // 2001-09-09
	unixSecondsMax = 1e11
	unixMillisMax  = 1e14
)

var (
	usDatePattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	euDatePattern  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// fallbackLayouts are tried in order once the strict textual forms fail
var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Mon, 02 Jan 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ParseAmount parses a raw cell into a signed amount.
// Currency symbols, thousands separators and whitespace are stripped. A
// parenthesized value, a trailing minus or a CR suffix is negative and a DR
// suffix is positive: "(1,234.50)" → -1234.5, "75.00 CR" → -75.
// It never panics; ok is false for anything non-numeric or non-finite.
func ParseAmount(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return parseAmountString(v.String())
	case decimal.Decimal:
		return finite(v.InexactFloat64())
	case string:
		return parseAmountString(v)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// amountSign is the sign forced by notation around the digits
type amountSign int

const (
	signAsWritten amountSign = iota
	signNegative
	signPositive
)

func parseAmountString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	sign := signAsWritten

	switch upper := strings.ToUpper(s); {
	case strings.HasSuffix(upper, "CR"):
		sign = signNegative
		s = strings.TrimSpace(s[:len(s)-2])
	case strings.HasSuffix(upper, "DR"):
		sign = signPositive
		s = strings.TrimSpace(s[:len(s)-2])
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		sign = signNegative
		s = s[1 : len(s)-1]
	} else if len(s) > 1 && strings.HasSuffix(s, "-") {
		sign = signNegative
		s = s[:len(s)-1]
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" || cleaned == "-" || cleaned == "+" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	switch sign {
	case signNegative:
		d = d.Abs().Neg()
	case signPositive:
		d = d.Abs()
	}
	return finite(d.InexactFloat64())
}

// ParseDate parses a raw cell into a date.
// Accepted inputs: time values, Excel serial numbers, Unix seconds or
// milliseconds (sniffed by magnitude), MM/DD/YYYY, DD.MM.YYYY, YYYY-MM-DD and
// a list of free-text layouts. ok is false when nothing fits.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case float64:
		return dateFromNumber(v)
	case float32:
		return dateFromNumber(float64(v))
	case int:
		return dateFromNumber(float64(v))
	case int64:
		return dateFromNumber(float64(v))
	case json.Number:
		return parseDateString(v.String())
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, false
	}
}

func dateFromNumber(n float64) (time.Time, bool) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return time.Time{}, false
	}
	switch {
	case n >= excelSerialMin && n <= excelSerialMax:
		days := math.Floor(n)
		frac := n - days
		t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * float64(24*time.Hour)))
		return t, true
	case n >= unixSecondsMin && n < unixSecondsMax:
		return time.Unix(int64(n), 0).UTC(), true
	case n >= unixSecondsMax && n < unixMillisMax:
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return dateFromNumber(n)
	}

	if m := usDatePattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[3], m[1], m[2])
	}
	if m := euDatePattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[3], m[2], m[1])
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return calendarDate(m[1], m[2], m[3])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// calendarDate builds a UTC date and rejects overflowing values such as 02/30/2024
func calendarDate(year, month, day string) (time.Time, bool) {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns the absolute number of calendar days between a and b
func DaysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Round(da.Sub(db).Hours() / 24))
	if days < 0 {
		return -days
	}
	return days
}
