package segmentation

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/ignite/discount-generator/internal/domain"
)

// Classifier applies an ordered rule list to customer records.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
	now   func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock injects the source of "today" used for recency.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// WithRules replaces the default rule list.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = rules }
}

// NewClassifier creates a classifier with DefaultRules and the wall clock.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{rules: DefaultRules(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns a copy of the active rule list.
func (c *Classifier) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Classify segments every record of table against the classifier's clock,
// preserving length and order. A table whose schema lacks a required field
// is rejected whole.
func (c *Classifier) Classify(table domain.Table) ([]domain.SegmentedRecord, error) {
	return c.ClassifyAt(table, c.now())
}

// ClassifyAt segments table against a fixed reference time.
func (c *Classifier) ClassifyAt(table domain.Table, now time.Time) ([]domain.SegmentedRecord, error) {
	if missing := table.Missing(domain.RequiredFields...); len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}

	out := make([]domain.SegmentedRecord, len(table.Records))
	for i, rec := range table.Records {
		days := DaysSince(rec.LastOrderDate, now)
		seg, err := c.assign(factsOf(rec, days), nil)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = domain.SegmentedRecord{
			CustomerRecord:     rec,
			DaysSinceLastOrder: days,
			Segment:            seg,
		}
	}
	return out, nil
}

// Explain returns the rule-by-rule trace for one record using the
// classifier's clock.
func (c *Classifier) Explain(rec domain.CustomerRecord) (*Explanation, error) {
	return c.ExplainAt(rec, c.now())
}

// ExplainAt returns the rule trace against a fixed reference time, so a
// stored run can be explained with the "today" it was classified with.
func (c *Classifier) ExplainAt(rec domain.CustomerRecord, now time.Time) (*Explanation, error) {
	facts := factsOf(rec, DaysSince(rec.LastOrderDate, now))
	exp := &Explanation{Facts: facts}
	seg, err := c.assign(facts, &exp.Trace)
	if err != nil {
		return nil, err
	}
	exp.Segment = seg
	return exp, nil
}

func (c *Classifier) assign(f Facts, trace *[]RuleTrace) (domain.Segment, error) {
	label := domain.SegmentNew
	for _, r := range c.rules {
		ok, err := r.When.Eval(f)
		if err != nil {
			return "", fmt.Errorf("rule %s: %w", r.Name, err)
		}
		blocked := ok && slices.Contains(r.Unless, label)
		if ok && !blocked {
			label = r.Segment
		}
		if trace != nil {
			*trace = append(*trace, RuleTrace{
				Rule:      r.Name,
				Segment:   r.Segment,
				Condition: r.When.String(),
				Matched:   ok && !blocked,
				Blocked:   blocked,
				After:     label,
			})
		}
	}
	return label, nil
}

func factsOf(rec domain.CustomerRecord, days int) Facts {
	return Facts{TotalSpent: rec.TotalSpent, TotalOrders: rec.TotalOrders, DaysSince: days}
}

// DaysSince returns whole days elapsed from last to now, rounding toward
// negative infinity. Future dates yield negative values.
func DaysSince(last, now time.Time) int {
	d := now.Sub(last)
	return int(math.Floor(float64(d) / float64(24*time.Hour)))
}
