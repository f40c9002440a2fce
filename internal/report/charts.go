package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/ignite/discount-generator/internal/domain"
)

// DefaultHistogramBins is the discount histogram resolution.
const DefaultHistogramBins = 10

// Bar is one labeled value in a chart dataset.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Dataset is a bar chart's data.
type Dataset struct {
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
	Bars   []Bar  `json:"bars"`
}

// BoxStats is a five-number summary for one segment.
type BoxStats struct {
	Segment domain.Segment `json:"segment"`
	Min     float64        `json:"min"`
	Q1      float64        `json:"q1"`
	Median  float64        `json:"median"`
	Q3      float64        `json:"q3"`
	Max     float64        `json:"max"`
}

// SegmentDistribution counts customers per segment.
func SegmentDistribution(offers []domain.OfferRecord) Dataset {
	ds := Dataset{Title: "Customer Segments", XLabel: "Segment", YLabel: "Customers"}
	for _, st := range SegmentStats(offers) {
		ds.Bars = append(ds.Bars, Bar{Label: string(st.Segment), Value: float64(st.Count)})
	}
	return ds
}

// AvgDiscountBySegment reports the mean discount per segment.
func AvgDiscountBySegment(offers []domain.OfferRecord) Dataset {
	ds := Dataset{Title: "Average Discount by Segment", XLabel: "Segment", YLabel: "Discount %"}
	for _, st := range SegmentStats(offers) {
		ds.Bars = append(ds.Bars, Bar{Label: string(st.Segment), Value: st.AvgDiscount})
	}
	return ds
}

// DiscountHistogram buckets discount percentages into equal-width bins
// spanning the observed range. The last bin is closed on the right.
func DiscountHistogram(offers []domain.OfferRecord, bins int) Dataset {
	ds := Dataset{Title: "Discount Distribution", XLabel: "Discount %", YLabel: "Customers"}
	if len(offers) == 0 {
		return ds
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range offers {
		lo = math.Min(lo, o.DiscountPct)
		hi = math.Max(hi, o.DiscountPct)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	width := (hi - lo) / float64(bins)

	counts := make([]int, bins)
	for _, o := range offers {
		i := int((o.DiscountPct - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	for i, n := range counts {
		from := lo + float64(i)*width
		ds.Bars = append(ds.Bars, Bar{
			Label: fmt.Sprintf("%.1f-%.1f", from, from+width),
			Value: float64(n),
		})
	}
	return ds
}

// ValidityBySegment returns the spread of validity days per segment.
func ValidityBySegment(offers []domain.OfferRecord) []BoxStats {
	by := make(map[domain.Segment][]float64)
	for _, o := range offers {
		by[o.Segment] = append(by[o.Segment], float64(o.ValidityDays))
	}

	var out []BoxStats
	for _, seg := range domain.Segments {
		vals, ok := by[seg]
		if !ok {
			continue
		}
		sort.Float64s(vals)
		out = append(out, BoxStats{
			Segment: seg,
			Min:     vals[0],
			Q1:      quantile(vals, 0.25),
			Median:  quantile(vals, 0.5),
			Q3:      quantile(vals, 0.75),
			Max:     vals[len(vals)-1],
		})
	}
	return out
}

// ValidityDataset flattens ValidityBySegment into median bars for rendering.
func ValidityDataset(offers []domain.OfferRecord) Dataset {
	ds := Dataset{Title: "Offer Validity by Segment", XLabel: "Segment", YLabel: "Days (median)"}
	for _, b := range ValidityBySegment(offers) {
		ds.Bars = append(ds.Bars, Bar{Label: string(b.Segment), Value: b.Median})
	}
	return ds
}

// quantile uses linear interpolation between closest ranks on sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
