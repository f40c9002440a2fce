package datanorm

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ignite/discount-generator/internal/domain"
)

var (
	errNotNumeric  = errors.New("not a number")
	errNegative    = errors.New("negative count")
	errOutOfRange  = errors.New("count out of range")
	errUnknownDate = errors.New("unrecognized date format")

	nonAmountChars = regexp.MustCompile(`[^0-9.]`)
)

// dateLayouts are tried in order. Day-first numeric forms come before
// month-first because the exports this targets are day-first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"01/02/2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"02-Jan-06",
}

// Excel stores dates as days since 1899-12-30. The bounds keep small integer
// cells (order counts mistyped into a date column) from becoming dates.
const (
	excelSerialMin = 20000   // 1954-10-03
	excelSerialMax = 2958465 // 9999-12-31
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Normalizer converts raw cells into typed customer fields, substituting
// defaults and recording a ParseError for every cell it could not read.
type Normalizer struct {
	defaultName  string
	defaultPhone string
	now          func() time.Time
	loc          *time.Location
	titler       cases.Caser
}

// NewNormalizer builds a Normalizer from importer options.
func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		defaultName:  opts.DefaultCustomerName,
		defaultPhone: opts.DefaultPhone,
		now:          opts.Now,
		loc:          opts.Location,
		titler:       cases.Title(language.Und, cases.NoLower),
	}
	if n.defaultName == "" {
		n.defaultName = domain.DefaultCustomerName
	}
	if n.defaultPhone == "" {
		n.defaultPhone = domain.DefaultPhone
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.loc == nil {
		n.loc = time.Local
	}
	return n
}

// NormalizeRow produces a CustomerRecord from one data row. rowNum is the
// 1-based row number in the source, used for error reporting.
func (n *Normalizer) NormalizeRow(row []string, mapping *ColumnMapping, rowNum int) (domain.CustomerRecord, []domain.ParseError) {
	cell := func(f domain.Field) (string, bool) {
		i, ok := mapping.FieldIdx[f]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	var errs []domain.ParseError
	fail := func(f domain.Field, raw string, err error) {
		errs = append(errs, domain.ParseError{Row: rowNum, Field: f, Value: raw, Err: err})
	}

	rec := domain.CustomerRecord{
		CustomerName:  n.defaultName,
		Phone:         n.defaultPhone,
		TotalOrders:   domain.DefaultTotalOrders,
		TotalSpent:    domain.DefaultTotalSpent,
		LastOrderDate: n.now(),
	}

	if v, _ := cell(domain.FieldCustomerName); v != "" {
		rec.CustomerName = n.titler.String(strings.Join(strings.Fields(v), " "))
	}
	if v, _ := cell(domain.FieldPhone); v != "" {
		if p := normalizePhone(v); p != "" {
			rec.Phone = p
		}
	}
	if v, _ := cell(domain.FieldEmail); v != "" {
		rec.Email = normalizeEmail(v)
	}

	if v, _ := cell(domain.FieldTotalOrders); v != "" {
		orders, err := ParseOrders(v)
		if err != nil {
			fail(domain.FieldTotalOrders, v, err)
		} else {
			rec.TotalOrders = orders
		}
	}
	if v, _ := cell(domain.FieldTotalSpent); v != "" {
		spent, err := ParseAmount(v)
		if err != nil {
			fail(domain.FieldTotalSpent, v, err)
		} else {
			rec.TotalSpent = spent
		}
	}
	if v, _ := cell(domain.FieldLastOrderDate); v != "" {
		d, err := ParseDate(v, n.loc)
		if err != nil {
			fail(domain.FieldLastOrderDate, v, err)
		} else {
			rec.LastOrderDate = d
		}
	}
	if v, _ := cell(domain.FieldAvgOrderValue); v != "" {
		aov, err := ParseAmount(v)
		if err != nil {
			fail(domain.FieldAvgOrderValue, v, err)
		} else {
			rec.AvgOrderValue = aov
		}
	}

	for i, val := range row {
		val = strings.TrimSpace(val)
		if val == "" || mapping.isMapped(i) || i >= len(mapping.RawNames) {
			continue
		}
		header := strings.TrimSpace(mapping.RawNames[i])
		if header == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[header] = val
	}

	return rec, errs
}

// ParseAmount strips everything but digits and the decimal point, so
// currency symbols, thousands separators and stray text are tolerated.
// A leading minus sign is dropped with the rest.
func ParseAmount(raw string) (float64, error) {
	// Trim dots left behind by abbreviations like "Rs.".
	cleaned := strings.Trim(nonAmountChars.ReplaceAllString(raw, ""), ".")
	if cleaned == "" {
		return 0, errNotNumeric
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errNotNumeric
	}
	return v, nil
}

// ParseOrders reads an order count. Spreadsheet exports frequently render
// integers as floats ("12.0"), which are truncated.
func ParseOrders(raw string) (int, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, errNegative
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	if f < 0 {
		return 0, errNegative
	}
	// float64(math.MaxInt) rounds up to 2^63, which int() cannot hold.
	if f >= math.MaxInt {
		return 0, errOutOfRange
	}
	return int(f), nil
}

// ParseDate accepts the textual layouts in dateLayouts and Excel serial day
// numbers. Values without a zone are interpreted in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < excelSerialMin || serial > excelSerialMax {
			return time.Time{}, errUnknownDate
		}
		return excelSerialToTime(serial, loc), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownDate
}

func excelSerialToTime(serial float64, loc *time.Location) time.Time {
	days := math.Floor(serial)
	frac := serial - days
	utc := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(math.Round(frac*86400)) * time.Second)
	return time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), utc.Minute(), utc.Second(), 0, loc)
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	return strings.Trim(email, "\"'<>")
}

func normalizePhone(raw string) string {
	// Keep only digits and leading +
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r == '+' && i == 0 {
			b.WriteRune(r)
		} else if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}
