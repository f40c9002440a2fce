package domain

// OfferRecord is a segmented customer with its generated discount offer.
type OfferRecord struct {
	SegmentedRecord
	DiscountPct   float64 `json:"discount_pct"`
	MinOrderValue float64 `json:"min_order_value"`
	ValidityDays  int     `json:"validity_days"`
	CampaignType  string  `json:"campaign_type"`
	PromoCode     string  `json:"promo_code"`
	Message       string  `json:"message"`
}

// MaxDiscountPct is the global ceiling applied to every offer.
const MaxDiscountPct = 50.0
