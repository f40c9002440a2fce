package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/domain"
)

func TestNewGeneratorFromConfigSeeded(t *testing.T) {
	cfg := config.OffersConfig{
		MessageTemplate: "{{ code }} {{ currency }}{{ min_order }}",
		CurrencySymbol:  "$",
		RandomSeed:      7,
	}
	recs := []domain.SegmentedRecord{segmented("A", domain.SegmentVIP, 100), segmented("B", domain.SegmentNew, 10)}

	g1, err := NewGeneratorFromConfig(cfg)
	require.NoError(t, err)
	g2, err := NewGeneratorFromConfig(cfg)
	require.NoError(t, err)

	a, err := g1.Price(recs)
	require.NoError(t, err)
	b, err := g2.Price(recs)
	require.NoError(t, err)

	assert.Equal(t, a[0].PromoCode, b[0].PromoCode)
	assert.Equal(t, a[1].PromoCode, b[1].PromoCode)
	assert.Equal(t, a[0].PromoCode+" $500", a[0].Message)
}

func TestNewGeneratorFromConfigBadTemplate(t *testing.T) {
	_, err := NewGeneratorFromConfig(config.OffersConfig{MessageTemplate: "{% if discount > 10 %}big"})
	assert.Error(t, err)
}
