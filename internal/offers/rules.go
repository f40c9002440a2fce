// Package offers prices segmented customers: it assigns each one a discount,
// minimum order, validity window, campaign label, promo code and message.
package offers

import (
	"math"

	"github.com/ignite/discount-generator/internal/domain"
)

// Rule is the pricing policy for one segment.
type Rule struct {
	Segment       domain.Segment `json:"segment" yaml:"segment"`
	BaseDiscount  float64        `json:"base_discount" yaml:"base_discount"`
	MaxDiscount   float64        `json:"max_discount" yaml:"max_discount"`
	MinOrderValue float64        `json:"min_order_value" yaml:"min_order_value"`
	ValidityDays  int            `json:"validity_days" yaml:"validity_days"`
	CampaignType  string         `json:"campaign_type" yaml:"campaign_type"`
	// Personalized segments earn one extra point per 1000 spent, up to MaxDiscount.
	Personalized bool `json:"personalized" yaml:"personalized"`
}

// DefaultRules returns the pricing table keyed by segment.
func DefaultRules() map[domain.Segment]Rule {
	return map[domain.Segment]Rule{
		domain.SegmentVIP: {
			Segment: domain.SegmentVIP, BaseDiscount: 25, MaxDiscount: 40,
			MinOrderValue: 500, ValidityDays: 30, CampaignType: "VIP Exclusive",
			Personalized: true,
		},
		domain.SegmentRegular: {
			Segment: domain.SegmentRegular, BaseDiscount: 20, MaxDiscount: 30,
			MinOrderValue: 400, ValidityDays: 21, CampaignType: "Loyalty Reward",
			Personalized: true,
		},
		domain.SegmentOccasional: {
			Segment: domain.SegmentOccasional, BaseDiscount: 15, MaxDiscount: 25,
			MinOrderValue: 300, ValidityDays: 14, CampaignType: "Comeback Offer",
		},
		domain.SegmentLapsed: {
			Segment: domain.SegmentLapsed, BaseDiscount: 30, MaxDiscount: 50,
			MinOrderValue: 200, ValidityDays: 45, CampaignType: "We Miss You!",
		},
		domain.SegmentNew: {
			Segment: domain.SegmentNew, BaseDiscount: 20, MaxDiscount: 35,
			MinOrderValue: 200, ValidityDays: 30, CampaignType: "Welcome Offer",
		},
	}
}

// Discount returns the percentage for a customer with the given spend.
// The result never exceeds domain.MaxDiscountPct.
func (r Rule) Discount(spent float64) float64 {
	pct := r.BaseDiscount
	if r.Personalized {
		pct = math.Min(r.BaseDiscount+math.Floor(spent/1000), r.MaxDiscount)
	}
	return math.Min(pct, domain.MaxDiscountPct)
}
