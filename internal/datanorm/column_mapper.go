package datanorm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ignite/discount-generator/internal/domain"
)

// AliasTable maps each canonical field to the header strings accepted for it.
// Matching is case-insensitive after trimming whitespace and quotes.
type AliasTable map[domain.Field][]string

// canonicalOrder is the field order used for schemas and lookups.
var canonicalOrder = []domain.Field{
	domain.FieldCustomerName,
	domain.FieldPhone,
	domain.FieldEmail,
	domain.FieldTotalOrders,
	domain.FieldTotalSpent,
	domain.FieldLastOrderDate,
	domain.FieldAvgOrderValue,
}

// DefaultAliases returns the built-in header variants seen across POS and
// CRM customer exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		domain.FieldCustomerName: {
			"customer_name", "name", "customer name", "full name",
			"customer", "client name", "guest name",
		},
		domain.FieldPhone: {
			"phone", "mobile", "contact", "phone number", "mobile number",
			"phone no", "contact number", "customer phone",
		},
		domain.FieldEmail: {"email", "email address", "e-mail"},
		domain.FieldTotalOrders: {
			"total_orders", "order_count", "orders", "number of orders",
			"total orders", "no. of orders",
		},
		domain.FieldTotalSpent: {
			"total_spent", "total_amount", "amount", "total spending",
			"total spend", "total spent", "lifetime value", "ltv", "total revenue",
			"total (₹)", "total (rs)", "total (inr)",
		},
		domain.FieldLastOrderDate: {
			"last_order_date", "last_order", "last order", "last order date",
			"order_date", "date of last order",
			"last visit", "most recent order", "last purchase date",
		},
		domain.FieldAvgOrderValue: {"avg_order_value", "average_order_value", "aov"},
	}
}

// LoadAliases reads a YAML alias file and merges it over the defaults.
// Fields present in the file replace the built-in list for that field.
//
//	total_spent:
//	  - total_spent
//	  - bill amount
func LoadAliases(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias file: %w", err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias file: %w", err)
	}

	table := DefaultAliases()
	for name, aliases := range raw {
		field := domain.Field(strings.ToLower(strings.TrimSpace(name)))
		if !isCanonical(field) {
			return nil, fmt.Errorf("alias file: unknown field %q", name)
		}
		table[field] = aliases
	}
	return table, nil
}

func isCanonical(f domain.Field) bool {
	for _, c := range canonicalOrder {
		if c == f {
			return true
		}
	}
	return false
}

// lookup builds the reverse index from normalized header to field.
func (a AliasTable) lookup() map[string]domain.Field {
	idx := make(map[string]domain.Field)
	for _, field := range canonicalOrder {
		for _, alias := range a[field] {
			key := normalizeHeader(alias)
			if _, taken := idx[key]; !taken {
				idx[key] = field
			}
		}
	}
	return idx
}

func normalizeHeader(h string) string {
	n := strings.ToLower(strings.TrimSpace(h))
	n = strings.Trim(n, "\"'")
	return strings.Join(strings.Fields(n), " ")
}

// ColumnMapping holds the resolved mapping from column indices to canonical fields.
type ColumnMapping struct {
	FieldIdx map[domain.Field]int // canonical field -> first matching column
	RawNames []string             // original header names
}

// MapColumns resolves a raw header row against the alias table. For each
// field the first matching column wins.
func MapColumns(header []string, aliases AliasTable) *ColumnMapping {
	idx := aliases.lookup()
	m := &ColumnMapping{
		FieldIdx: make(map[domain.Field]int),
		RawNames: header,
	}
	for i, h := range header {
		field, ok := idx[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, seen := m.FieldIdx[field]; !seen {
			m.FieldIdx[field] = i
		}
	}
	return m
}

// Fields returns the located fields in canonical order.
func (m *ColumnMapping) Fields() []domain.Field {
	var out []domain.Field
	for _, f := range canonicalOrder {
		if _, ok := m.FieldIdx[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Missing returns the required fields that no column resolved to.
func (m *ColumnMapping) Missing() []domain.Field {
	var missing []domain.Field
	for _, f := range domain.RequiredFields {
		if _, ok := m.FieldIdx[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Describe reports which source header each located field came from.
func (m *ColumnMapping) Describe() map[string]string {
	out := make(map[string]string, len(m.FieldIdx))
	for f, i := range m.FieldIdx {
		if i < len(m.RawNames) {
			out[string(f)] = strings.TrimSpace(m.RawNames[i])
		}
	}
	return out
}

func (m *ColumnMapping) isMapped(col int) bool {
	for _, i := range m.FieldIdx {
		if i == col {
			return true
		}
	}
	return false
}

// FindHeaderRow returns the index of the header row among the first maxScan
// rows. Report exports often carry a title block above the table, so the row
// resolving the most required fields (then the most fields overall) wins.
// Ties go to the earliest row; 0 is returned when nothing resolves.
func FindHeaderRow(rows [][]string, aliases AliasTable, maxScan int) int {
	if maxScan <= 0 || maxScan > len(rows) {
		maxScan = len(rows)
	}
	best, bestRequired, bestTotal := 0, 0, 0
	for i := 0; i < maxScan; i++ {
		m := MapColumns(rows[i], aliases)
		required := len(domain.RequiredFields) - len(m.Missing())
		total := len(m.FieldIdx)
		if required > bestRequired || (required == bestRequired && total > bestTotal) {
			best, bestRequired, bestTotal = i, required, total
		}
	}
	return best
}
