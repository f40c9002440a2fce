package offers

import (
	"fmt"
	"math"
	"strings"

	"github.com/osteele/liquid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ignite/discount-generator/internal/domain"
)

// DefaultTemplate is the promotional copy sent with every offer.
const DefaultTemplate = "Hi {{ name }}, as a {{ segment }} customer, we're offering you {{ discount }}% off " +
	"your next order of {{ currency }}{{ min_order }} or more! Valid for {{ validity }} days. Use code: {{ code }}"

// MessageData is the binding set exposed to message templates.
type MessageData struct {
	Name          string
	Segment       string
	DiscountPct   float64
	MinOrderValue float64
	ValidityDays  int
	PromoCode     string
	Campaign      string
}

// MessageRenderer renders offer copy from a Liquid template. The template is
// compiled once; rendering is safe for concurrent use.
type MessageRenderer struct {
	tpl      *liquid.Template
	currency string
}

// NewMessageRenderer compiles tpl. An empty tpl selects DefaultTemplate.
func NewMessageRenderer(tpl, currency string) (*MessageRenderer, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	engine := liquid.NewEngine()
	registerFilters(engine)

	compiled, err := engine.ParseString(tpl)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}
	return &MessageRenderer{tpl: compiled, currency: currency}, nil
}

// registerFilters adds formatting helpers for custom templates.
func registerFilters(engine *liquid.Engine) {
	p := message.NewPrinter(language.English)

	// Thousands grouping: {{ min_order | grouped }} -> 1,500
	engine.RegisterFilter("grouped", func(v interface{}) string {
		switch n := v.(type) {
		case int:
			return p.Sprintf("%d", n)
		case float64:
			return p.Sprintf("%.2f", n)
		default:
			return fmt.Sprint(v)
		}
	})
}

// Render produces the message for one offer. Percentages and amounts are
// truncated to integers; a blank name becomes domain.DefaultCustomerName.
func (m *MessageRenderer) Render(d MessageData) (string, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = domain.DefaultCustomerName
	}
	bindings := map[string]interface{}{
		"name":      name,
		"segment":   d.Segment,
		"discount":  int(math.Floor(d.DiscountPct)),
		"currency":  m.currency,
		"min_order": int(math.Floor(d.MinOrderValue)),
		"validity":  d.ValidityDays,
		"code":      d.PromoCode,
		"campaign":  d.Campaign,
	}
	out, err := m.tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return out, nil
}
