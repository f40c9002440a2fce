// Package segmentation assigns every customer exactly one behavioral segment
// using an ordered list of override rules over spend, order count and
// recency.
package segmentation

import (
	"fmt"

	"github.com/ignite/discount-generator/internal/domain"
)

// ==========================================
// OPERATORS
// ==========================================

// Operator represents a numeric comparison operator
type Operator string

const (
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

func (op Operator) symbol() string {
	switch op {
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	}
	return string(op)
}

func (op Operator) compare(a, b float64) (bool, error) {
	switch op {
	case OpGt:
		return a > b, nil
	case OpGte:
		return a >= b, nil
	case OpLt:
		return a < b, nil
	case OpLte:
		return a <= b, nil
	}
	return false, fmt.Errorf("unsupported operator: %s", op)
}

// ==========================================
// METRICS
// ==========================================

// Metric names a per-customer value a condition can test.
type Metric string

const (
	MetricTotalSpent  Metric = "total_spent"
	MetricTotalOrders Metric = "total_orders"
	MetricDaysSince   Metric = "days_since_last_order"
)

// Facts are the metric values of one customer at evaluation time.
type Facts struct {
	TotalSpent  float64 `json:"total_spent"`
	TotalOrders int     `json:"total_orders"`
	DaysSince   int     `json:"days_since_last_order"`
}

func (f Facts) value(m Metric) (float64, error) {
	switch m {
	case MetricTotalSpent:
		return f.TotalSpent, nil
	case MetricTotalOrders:
		return float64(f.TotalOrders), nil
	case MetricDaysSince:
		return float64(f.DaysSince), nil
	}
	return 0, fmt.Errorf("unknown metric: %s", m)
}

// ==========================================
// CONDITIONS
// ==========================================

// LogicOperator for combining conditions
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// Condition compares one metric against a threshold.
type Condition struct {
	Metric   Metric   `json:"metric" yaml:"metric"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    float64  `json:"value" yaml:"value"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %g", c.Metric, c.Operator.symbol(), c.Value)
}

// ConditionGroup combines conditions and nested groups with AND/OR logic.
type ConditionGroup struct {
	LogicOperator LogicOperator    `json:"logic_operator" yaml:"logic_operator"`
	Conditions    []Condition      `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Groups        []ConditionGroup `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Eval evaluates the group against facts. An empty group matches.
func (g ConditionGroup) Eval(f Facts) (bool, error) {
	or := g.LogicOperator == LogicOr
	if len(g.Conditions) == 0 && len(g.Groups) == 0 {
		return true, nil
	}
	for _, c := range g.Conditions {
		v, err := f.value(c.Metric)
		if err != nil {
			return false, err
		}
		ok, err := c.Operator.compare(v, c.Value)
		if err != nil {
			return false, err
		}
		if or && ok {
			return true, nil
		}
		if !or && !ok {
			return false, nil
		}
	}
	for _, sub := range g.Groups {
		ok, err := sub.Eval(f)
		if err != nil {
			return false, err
		}
		if or && ok {
			return true, nil
		}
		if !or && !ok {
			return false, nil
		}
	}
	return !or, nil
}

func (g ConditionGroup) String() string {
	if len(g.Conditions) == 0 && len(g.Groups) == 0 {
		return "always"
	}
	op := " AND "
	if g.LogicOperator == LogicOr {
		op = " OR "
	}
	var s string
	for _, c := range g.Conditions {
		if s != "" {
			s += op
		}
		s += c.String()
	}
	for _, sub := range g.Groups {
		if s != "" {
			s += op
		}
		s += "(" + sub.String() + ")"
	}
	return s
}

// ==========================================
// RULES
// ==========================================

// Rule assigns Segment when When matches and the current label is not one of
// Unless. Rules run in order and later matches overwrite earlier ones.
type Rule struct {
	Name    string           `json:"name" yaml:"name"`
	Segment domain.Segment   `json:"segment" yaml:"segment"`
	When    ConditionGroup   `json:"when" yaml:"when"`
	Unless  []domain.Segment `json:"unless,omitempty" yaml:"unless,omitempty"`
}

// RuleTrace records how one rule evaluated for a customer.
type RuleTrace struct {
	Rule      string         `json:"rule"`
	Segment   domain.Segment `json:"segment"`
	Condition string         `json:"condition"`
	Matched   bool           `json:"matched"`
	Blocked   bool           `json:"blocked,omitempty"` // conditions held but the current label was excluded
	After     domain.Segment `json:"label_after"`
}

// Explanation is the full rule trace for one customer.
type Explanation struct {
	Facts   Facts          `json:"facts"`
	Trace   []RuleTrace    `json:"trace"`
	Segment domain.Segment `json:"segment"`
}
