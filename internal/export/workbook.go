// Package export writes priced campaigns to a multi-sheet Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/report"
)

// Sheet names in the generated workbook.
const (
	SheetOffers   = "Discount_Recommendations"
	SheetSummary  = "Summary"
	SheetSegments = "Segment_Analysis"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var offerHeader = []interface{}{
	"customer_name", "phone", "email", "total_orders", "total_spent",
	"last_order_date", "days_since_last_order", "segment", "discount_percentage",
	"min_order_value", "validity_days", "campaign_type", "promo_code", "message",
}

var segmentHeader = []interface{}{
	"Segment", "Customer Count", "Avg Spend", "Total Spend", "Avg Discount %", "Avg Orders",
}

// FileName returns the download name for a run generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("discount_recommendations_%s.xlsx", t.Format("20060102_150405"))
}

// Write renders offers with their summary and segment analysis as xlsx.
func Write(w io.Writer, offers []domain.OfferRecord, summary report.Summary, stats []report.SegmentStat) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOffers); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetSummary, SheetSegments} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeOffers(f, offers, bold); err != nil {
		return err
	}
	if err := writeSummary(f, summary, bold); err != nil {
		return err
	}
	if err := writeSegments(f, stats, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeOffers(f *excelize.File, offers []domain.OfferRecord, header int) error {
	if err := setRow(f, SheetOffers, 1, offerHeader); err != nil {
		return err
	}
	for i, o := range offers {
		row := []interface{}{
			o.CustomerName, o.Phone, o.Email, o.TotalOrders, o.TotalSpent,
			o.LastOrderDate.Format("2006-01-02"), o.DaysSinceLastOrder, string(o.Segment),
			o.DiscountPct, o.MinOrderValue, o.ValidityDays, o.CampaignType,
			o.PromoCode, o.Message,
		}
		if err := setRow(f, SheetOffers, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetOffers, "A", "A", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetOffers, "N", "N", 100); err != nil {
		return err
	}
	return styleHeader(f, SheetOffers, len(offerHeader), header)
}

func writeSummary(f *excelize.File, s report.Summary, header int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Customers", s.TotalCustomers},
		{"Average Discount", s.AvgDiscount},
		{"Estimated Campaign Cost", s.EstimatedCost},
		{"Most Common Segment", string(s.MostCommonSegment)},
	}
	for i, r := range rows {
		if err := setRow(f, SheetSummary, i+1, r); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 28); err != nil {
		return err
	}
	return styleHeader(f, SheetSummary, 2, header)
}

func writeSegments(f *excelize.File, stats []report.SegmentStat, header int) error {
	if err := setRow(f, SheetSegments, 1, segmentHeader); err != nil {
		return err
	}
	for i, st := range stats {
		row := []interface{}{
			string(st.Segment), st.Count, st.AvgSpend, st.TotalSpend, st.AvgDiscount, st.AvgOrders,
		}
		if err := setRow(f, SheetSegments, i+2, row); err != nil {
			return err
		}
	}
	return styleHeader(f, SheetSegments, len(segmentHeader), header)
}
