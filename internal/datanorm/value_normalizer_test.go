package datanorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/discount-generator/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"7500", 7500, false},
		{"₹1,234.50", 1234.5, false},
		{"Rs. 2000", 2000, false}, // the abbreviation's dot is stripped with the letters
		{" 499.99 ", 499.99, false},
		{"-300", 300, false},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseOrders(t *testing.T) {
	n, err := ParseOrders("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = ParseOrders("12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = ParseOrders("1,200")
	require.NoError(t, err)
	assert.Equal(t, 1200, n)

	_, err = ParseOrders("-2")
	assert.Error(t, err)

	_, err = ParseOrders("many")
	assert.Error(t, err)

	for _, raw := range []string{"1e19", "1e20", "99999999999999999999", "9223372036854775808"} {
		n, err = ParseOrders(raw)
		assert.ErrorIs(t, err, errOutOfRange, raw)
		assert.Zero(t, n, raw)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2025-06-23", "23/06/2025", "23-06-2025", "23 Jun 2025", "Jun 23, 2025", "45831"} {
		t.Run(raw, func(t *testing.T) {
			got, err := ParseDate(raw, time.UTC)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	got, err := ParseDate("2025-06-23 14:30:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 14, got.Hour())

	got, err = ParseDate("45831.5", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())

	_, err = ParseDate("12", time.UTC)
	assert.Error(t, err, "small integers are not serial dates")

	_, err = ParseDate("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestNormalizeRow(t *testing.T) {
	now := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(Options{Now: func() time.Time { return now }, Location: time.UTC})

	header := []string{"name", "phone", "orders", "amount", "last_order", "Outlet"}
	m := MapColumns(header, DefaultAliases())

	rec, errs := n.NormalizeRow([]string{"  asha RAO ", "+91 98450-12345", "12", "₹7,500", "2025-06-01", "Indiranagar"}, m, 5)
	assert.Empty(t, errs)
	assert.Equal(t, "Asha RAO", rec.CustomerName)
	assert.Equal(t, "+919845012345", rec.Phone)
	assert.Equal(t, 12, rec.TotalOrders)
	assert.Equal(t, 7500.0, rec.TotalSpent)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rec.LastOrderDate)
	assert.Equal(t, map[string]string{"Outlet": "Indiranagar"}, rec.Extra)
}

func TestNormalizeRowDefaults(t *testing.T) {
	now := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(Options{Now: func() time.Time { return now }, Location: time.UTC})

	header := []string{"name", "phone", "orders", "amount", "last_order"}
	m := MapColumns(header, DefaultAliases())

	rec, errs := n.NormalizeRow([]string{"", "", "lots", "n/a", "someday"}, m, 7)
	assert.Equal(t, domain.DefaultCustomerName, rec.CustomerName)
	assert.Equal(t, domain.DefaultPhone, rec.Phone)
	assert.Equal(t, domain.DefaultTotalOrders, rec.TotalOrders)
	assert.Equal(t, 0.0, rec.TotalSpent)
	assert.Equal(t, now, rec.LastOrderDate)

	require.Len(t, errs, 3)
	assert.Equal(t, 7, errs[0].Row)
	assert.Equal(t, domain.FieldTotalOrders, errs[0].Field)
	assert.Equal(t, "lots", errs[0].Value)
	assert.Equal(t, domain.FieldTotalSpent, errs[1].Field)
	assert.Equal(t, domain.FieldLastOrderDate, errs[2].Field)
}

func TestNormalizeRowShortRow(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	n := NewNormalizer(Options{Now: func() time.Time { return now }, DefaultPhone: "-"})

	m := MapColumns([]string{"orders", "amount", "last_order", "phone"}, DefaultAliases())
	rec, errs := n.NormalizeRow([]string{"3", "900"}, m, 2)
	assert.Empty(t, errs)
	assert.Equal(t, 3, rec.TotalOrders)
	assert.Equal(t, "-", rec.Phone)
	assert.Equal(t, now, rec.LastOrderDate)
}

func TestNormalizeRowOrdersOverflow(t *testing.T) {
	now := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)
	n := NewNormalizer(Options{Now: func() time.Time { return now }, Location: time.UTC})

	m := MapColumns([]string{"orders", "amount", "last_order"}, DefaultAliases())
	rec, errs := n.NormalizeRow([]string{"1e20", "3500", "2025-06-10"}, m, 4)

	assert.Equal(t, domain.DefaultTotalOrders, rec.TotalOrders)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.FieldTotalOrders, errs[0].Field)
	assert.Equal(t, "1e20", errs[0].Value)
	assert.ErrorIs(t, errs[0].Err, errOutOfRange)
}
