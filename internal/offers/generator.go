package offers

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/domain"
)

// Generator turns segmented records into offers. Apart from the promo-code
// suffix its output depends only on segment and spend.
type Generator struct {
	rules    map[domain.Segment]Rule
	codes    *PromoCoder
	renderer *MessageRenderer
}

// Option configures a Generator.
type Option func(*Generator)

// WithRules replaces the pricing table.
func WithRules(rules map[domain.Segment]Rule) Option {
	return func(g *Generator) { g.rules = rules }
}

// WithIntSource injects the promo-code random source.
func WithIntSource(src IntSource) Option {
	return func(g *Generator) { g.codes = NewPromoCoder(src) }
}

// WithRenderer sets the message renderer.
func WithRenderer(r *MessageRenderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// NewGenerator creates a generator with DefaultRules, DefaultTemplate in
// rupees and a time-seeded random source unless overridden.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{rules: DefaultRules()}
	for _, opt := range opts {
		opt(g)
	}
	if g.codes == nil {
		g.codes = NewPromoCoder(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	if g.renderer == nil {
		r, err := NewMessageRenderer(DefaultTemplate, "₹")
		if err != nil {
			return nil, err
		}
		g.renderer = r
	}
	return g, nil
}

// Rule returns the pricing rule for seg.
func (g *Generator) Rule(seg domain.Segment) (Rule, bool) {
	r, ok := g.rules[seg]
	return r, ok
}

// Price builds one offer per record, preserving order. If any record carries
// a segment without a rule, nothing is returned.
func (g *Generator) Price(records []domain.SegmentedRecord) ([]domain.OfferRecord, error) {
	for i, rec := range records {
		if _, ok := g.rules[rec.Segment]; !ok || !rec.Segment.Valid() {
			return nil, &domain.UnknownSegmentError{Row: i, Segment: rec.Segment}
		}
	}

	out := make([]domain.OfferRecord, len(records))
	for i, rec := range records {
		offer, err := g.priceOne(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = offer
	}
	return out, nil
}

func (g *Generator) priceOne(rec domain.SegmentedRecord) (domain.OfferRecord, error) {
	rule := g.rules[rec.Segment]
	offer := domain.OfferRecord{
		SegmentedRecord: rec,
		DiscountPct:     rule.Discount(rec.TotalSpent),
		MinOrderValue:   rule.MinOrderValue,
		ValidityDays:    rule.ValidityDays,
		CampaignType:    rule.CampaignType,
		PromoCode:       g.codes.Code(rule.CampaignType),
	}

	msg, err := g.renderer.Render(MessageData{
		Name:          rec.CustomerName,
		Segment:       string(rec.Segment),
		DiscountPct:   offer.DiscountPct,
		MinOrderValue: offer.MinOrderValue,
		ValidityDays:  offer.ValidityDays,
		PromoCode:     offer.PromoCode,
		Campaign:      offer.CampaignType,
	})
	if err != nil {
		return domain.OfferRecord{}, err
	}
	offer.Message = msg
	return offer, nil
}

// NewGeneratorFromConfig applies the offers section: message template,
// currency symbol and, when non-zero, a fixed promo-code seed.
func NewGeneratorFromConfig(cfg config.OffersConfig) (*Generator, error) {
	r, err := NewMessageRenderer(cfg.MessageTemplate, cfg.CurrencySymbol)
	if err != nil {
		return nil, err
	}
	opts := []Option{WithRenderer(r)}
	if cfg.RandomSeed != 0 {
		opts = append(opts, WithIntSource(rand.New(rand.NewSource(cfg.RandomSeed))))
	}
	return NewGenerator(opts...)
}
