// Package report computes campaign summaries, per-segment statistics and the
// datasets behind the dashboard charts.
package report

import (
	"math"
	"time"

	"github.com/ignite/discount-generator/internal/domain"
)

// Summary is the headline view of a priced campaign.
type Summary struct {
	TotalCustomers    int                    `json:"total_customers"`
	AvgDiscount       float64                `json:"avg_discount"`
	EstimatedCost     float64                `json:"estimated_cost"`
	MostCommonSegment domain.Segment         `json:"most_common_segment,omitempty"`
	SegmentCounts     map[domain.Segment]int `json:"segment_counts"`
}

// SegmentStat aggregates one segment's offers.
type SegmentStat struct {
	Segment     domain.Segment `json:"segment"`
	Count       int            `json:"count"`
	AvgSpend    float64        `json:"avg_spend"`
	TotalSpend  float64        `json:"total_spend"`
	AvgDiscount float64        `json:"avg_discount"`
	AvgOrders   float64        `json:"avg_orders"`
}

// PreviewStats describes an uploaded table before processing.
type PreviewStats struct {
	Customers     int        `json:"customers"`
	TotalSpend    float64    `json:"total_spend"`
	AvgSpend      float64    `json:"avg_spend"`
	EarliestOrder *time.Time `json:"earliest_order,omitempty"`
	LatestOrder   *time.Time `json:"latest_order,omitempty"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summarize computes the campaign headline. The estimated cost assumes every
// customer spends their historical total once at the offered discount.
// Ties for the most common segment go to the earlier segment in
// domain.Segments.
func Summarize(offers []domain.OfferRecord) Summary {
	s := Summary{
		TotalCustomers: len(offers),
		SegmentCounts:  make(map[domain.Segment]int),
	}
	if len(offers) == 0 {
		return s
	}

	var pctSum, cost float64
	for _, o := range offers {
		pctSum += o.DiscountPct
		cost += o.TotalSpent * o.DiscountPct / 100
		s.SegmentCounts[o.Segment]++
	}
	s.AvgDiscount = round2(pctSum / float64(len(offers)))
	s.EstimatedCost = round2(cost)

	best := 0
	for _, seg := range domain.Segments {
		if n := s.SegmentCounts[seg]; n > best {
			best = n
			s.MostCommonSegment = seg
		}
	}
	return s
}

// SegmentStats aggregates offers per segment in canonical order, omitting
// segments with no customers.
func SegmentStats(offers []domain.OfferRecord) []SegmentStat {
	type acc struct {
		n                  int
		spend, pct, orders float64
	}
	by := make(map[domain.Segment]*acc)
	for _, o := range offers {
		a, ok := by[o.Segment]
		if !ok {
			a = &acc{}
			by[o.Segment] = a
		}
		a.n++
		a.spend += o.TotalSpent
		a.pct += o.DiscountPct
		a.orders += float64(o.TotalOrders)
	}

	var stats []SegmentStat
	for _, seg := range domain.Segments {
		a, ok := by[seg]
		if !ok {
			continue
		}
		n := float64(a.n)
		stats = append(stats, SegmentStat{
			Segment:     seg,
			Count:       a.n,
			AvgSpend:    round2(a.spend / n),
			TotalSpend:  round2(a.spend),
			AvgDiscount: round2(a.pct / n),
			AvgOrders:   round2(a.orders / n),
		})
	}
	return stats
}

// Preview summarizes a normalized table for the upload screen.
func Preview(table domain.Table) PreviewStats {
	p := PreviewStats{Customers: table.Len()}
	if table.Len() == 0 {
		return p
	}

	var earliest, latest time.Time
	for i, r := range table.Records {
		p.TotalSpend += r.TotalSpent
		if i == 0 || r.LastOrderDate.Before(earliest) {
			earliest = r.LastOrderDate
		}
		if i == 0 || r.LastOrderDate.After(latest) {
			latest = r.LastOrderDate
		}
	}
	p.AvgSpend = round2(p.TotalSpend / float64(table.Len()))
	p.TotalSpend = round2(p.TotalSpend)
	p.EarliestOrder = &earliest
	p.LatestOrder = &latest
	return p
}
