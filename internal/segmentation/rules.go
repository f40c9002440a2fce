package segmentation

import "github.com/ignite/discount-generator/internal/domain"

// Thresholds used by the default rule list.
const (
	VIPSpend           = 5000.0
	VIPFrequentOrders  = 10
	VIPFrequentSpend   = 2000.0
	RegularSpend       = 2000.0
	RegularOrders      = 5
	RegularOrdersSpend = 1000.0
	OccasionalSpend    = 500.0
	LapsedDays         = 14
	NewMaxSpend        = 500.0
	NewMaxOrders       = 2
)

func cond(m Metric, op Operator, v float64) Condition {
	return Condition{Metric: m, Operator: op, Value: v}
}

// DefaultRules returns the ordered override list. Every customer starts as
// New; the recency rules run last so a lapsed VIP is still Lapsed and a
// recent small spender is New whatever came before.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "vip",
			Segment: domain.SegmentVIP,
			When: ConditionGroup{
				LogicOperator: LogicOr,
				Conditions:    []Condition{cond(MetricTotalSpent, OpGte, VIPSpend)},
				Groups: []ConditionGroup{{
					LogicOperator: LogicAnd,
					Conditions: []Condition{
						cond(MetricTotalOrders, OpGte, VIPFrequentOrders),
						cond(MetricTotalSpent, OpGte, VIPFrequentSpend),
					},
				}},
			},
		},
		{
			Name:    "regular",
			Segment: domain.SegmentRegular,
			Unless:  []domain.Segment{domain.SegmentVIP},
			When: ConditionGroup{
				LogicOperator: LogicOr,
				Conditions:    []Condition{cond(MetricTotalSpent, OpGte, RegularSpend)},
				Groups: []ConditionGroup{{
					LogicOperator: LogicAnd,
					Conditions: []Condition{
						cond(MetricTotalOrders, OpGte, RegularOrders),
						cond(MetricTotalSpent, OpGte, RegularOrdersSpend),
					},
				}},
			},
		},
		{
			Name:    "occasional",
			Segment: domain.SegmentOccasional,
			Unless:  []domain.Segment{domain.SegmentVIP, domain.SegmentRegular},
			When: ConditionGroup{
				LogicOperator: LogicAnd,
				Conditions:    []Condition{cond(MetricTotalSpent, OpGte, OccasionalSpend)},
			},
		},
		{
			Name:    "lapsed",
			Segment: domain.SegmentLapsed,
			When: ConditionGroup{
				LogicOperator: LogicAnd,
				Conditions: []Condition{
					cond(MetricDaysSince, OpGte, LapsedDays),
					cond(MetricTotalOrders, OpGt, 0),
					cond(MetricTotalSpent, OpGt, 0),
				},
			},
		},
		{
			Name:    "new",
			Segment: domain.SegmentNew,
			When: ConditionGroup{
				LogicOperator: LogicAnd,
				Conditions: []Condition{
					cond(MetricTotalSpent, OpLt, NewMaxSpend),
					cond(MetricTotalOrders, OpLte, NewMaxOrders),
					cond(MetricDaysSince, OpLt, LapsedDays),
				},
			},
		},
	}
}
