package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/report"
)

func sampleOffers() []domain.OfferRecord {
	return []domain.OfferRecord{
		{
			SegmentedRecord: domain.SegmentedRecord{
				CustomerRecord: domain.CustomerRecord{
					CustomerName: "Asha Rao", Phone: "9845012345", TotalOrders: 25, TotalSpent: 7500,
					LastOrderDate: time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC),
				},
				DaysSinceLastOrder: 5,
				Segment:            domain.SegmentVIP,
			},
			DiscountPct: 32, MinOrderValue: 500, ValidityDays: 30,
			CampaignType: "VIP Exclusive", PromoCode: "VIPE4821", Message: "Hi Asha Rao",
		},
		{
			SegmentedRecord: domain.SegmentedRecord{
				CustomerRecord: domain.CustomerRecord{
					CustomerName: "Valued Customer", Phone: "Not Provided", TotalOrders: 2, TotalSpent: 400,
					LastOrderDate: time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC),
				},
				DaysSinceLastOrder: 3,
				Segment:            domain.SegmentNew,
			},
			DiscountPct: 20, MinOrderValue: 200, ValidityDays: 30,
			CampaignType: "Welcome Offer", PromoCode: "WELC1000", Message: "Hi there",
		},
	}
}

func TestWrite(t *testing.T) {
	offers := sampleOffers()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, offers, report.Summarize(offers), report.SegmentStats(offers)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetOffers, SheetSummary, SheetSegments}, f.GetSheetList())

	rows, err := f.GetRows(SheetOffers)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "customer_name", rows[0][0])
	assert.Equal(t, "message", rows[0][13])
	assert.Equal(t, "Asha Rao", rows[1][0])
	assert.Equal(t, "2025-06-25", rows[1][5])
	assert.Equal(t, "VIP", rows[1][7])
	assert.Equal(t, "32", rows[1][8])
	assert.Equal(t, "VIPE4821", rows[1][12])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"Total Customers", "2"}, summary[1])
	assert.Equal(t, []string{"Average Discount", "26"}, summary[2])
	assert.Equal(t, []string{"Estimated Campaign Cost", "2480"}, summary[3])

	segs, err := f.GetRows(SheetSegments)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "VIP", segs[1][0])
	assert.Equal(t, "New", segs[2][0])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, report.Summarize(nil), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetOffers)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2025, 6, 30, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "discount_recommendations_20250630_140509.xlsx", FileName(ts))
}
