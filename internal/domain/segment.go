package domain

// Segment is the behavioral label assigned to a customer for one pricing cycle.
type Segment string

const (
	SegmentVIP        Segment = "VIP"
	SegmentRegular    Segment = "Regular"
	SegmentOccasional Segment = "Occasional"
	SegmentLapsed     Segment = "Lapsed"
	SegmentNew        Segment = "New"
)

// Segments is the closed set of segments in canonical display order.
var Segments = []Segment{
	SegmentVIP,
	SegmentRegular,
	SegmentOccasional,
	SegmentLapsed,
	SegmentNew,
}

// Valid reports whether s is one of the five known segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentVIP, SegmentRegular, SegmentOccasional, SegmentLapsed, SegmentNew:
		return true
	}
	return false
}

// Rank returns the position of s in Segments, or -1 for an unknown segment.
func (s Segment) Rank() int {
	for i, seg := range Segments {
		if seg == s {
			return i
		}
	}
	return -1
}
