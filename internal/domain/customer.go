package domain

import (
	"slices"
	"time"
)

// Field is a canonical logical column name shared by every import source.
type Field string

const (
	FieldCustomerName  Field = "customer_name"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldTotalOrders   Field = "total_orders"
	FieldTotalSpent    Field = "total_spent"
	FieldLastOrderDate Field = "last_order_date"
	FieldAvgOrderValue Field = "avg_order_value"
)

// RequiredFields must all be located in an input schema before classification.
var RequiredFields = []Field{FieldTotalOrders, FieldTotalSpent, FieldLastOrderDate}

// Placeholders used when the optional identity columns are absent or blank.
const (
	DefaultCustomerName = "Valued Customer"
	DefaultPhone        = "Not Provided"
)

// Defaults substituted when a numeric cell is missing or unparseable.
const (
	DefaultTotalOrders = 1
	DefaultTotalSpent  = 0.0
)

// CustomerRecord is one normalized row of customer order history.
type CustomerRecord struct {
	CustomerName  string            `json:"customer_name"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email,omitempty"`
	TotalOrders   int               `json:"total_orders"`
	TotalSpent    float64           `json:"total_spent"`
	LastOrderDate time.Time         `json:"last_order_date"`
	AvgOrderValue float64           `json:"avg_order_value,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Table is a normalized record set together with the schema that was located
// in the source. Fields lists the canonical fields found in the header, which
// is what classification validates against.
type Table struct {
	Fields  []Field          `json:"fields"`
	Records []CustomerRecord `json:"records"`
}

// Has reports whether f was located in the source schema.
func (t Table) Has(f Field) bool {
	return slices.Contains(t.Fields, f)
}

// Missing returns the subset of fields not present in the schema, in the
// order given.
func (t Table) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !t.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Records) }

// SegmentedRecord is a customer with its recency and assigned segment.
type SegmentedRecord struct {
	CustomerRecord
	DaysSinceLastOrder int     `json:"days_since_last_order"`
	Segment            Segment `json:"segment"`
}
