package campaign

import (
	"fmt"
	"time"

	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/offers"
	"github.com/ignite/discount-generator/internal/pkg/logger"
	"github.com/ignite/discount-generator/internal/report"
	"github.com/ignite/discount-generator/internal/segmentation"
)

// Run is the result of processing one table.
type Run struct {
	ProcessedAt time.Time            `json:"processed_at"`
	Offers      []domain.OfferRecord `json:"offers"`
	Summary     report.Summary       `json:"summary"`
	Segments    []report.SegmentStat `json:"segments"`
	Duration    time.Duration        `json:"duration"`
}

// Pipeline classifies and prices a whole table. It is stateless apart from
// the promo-code source and safe for concurrent use.
type Pipeline struct {
	classifier *segmentation.Classifier
	generator  *offers.Generator
	now        func() time.Time
}

// NewPipeline composes a classifier and a generator. now supplies the
// reference time for recency; nil means time.Now.
func NewPipeline(c *segmentation.Classifier, g *offers.Generator, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{classifier: c, generator: g, now: now}
}

// Classifier exposes the segmentation stage, used for rule traces.
func (p *Pipeline) Classifier() *segmentation.Classifier { return p.classifier }

// Run processes table. Either every row is classified and priced or an
// error is returned with no partial result.
func (p *Pipeline) Run(table domain.Table) (*Run, error) {
	start := time.Now()
	now := p.now()

	segmented, err := p.classifier.ClassifyAt(table, now)
	if err != nil {
		return nil, fmt.Errorf("segment customers: %w", err)
	}
	priced, err := p.generator.Price(segmented)
	if err != nil {
		return nil, fmt.Errorf("generate discounts: %w", err)
	}

	run := &Run{
		ProcessedAt: now,
		Offers:      priced,
		Summary:     report.Summarize(priced),
		Segments:    report.SegmentStats(priced),
		Duration:    time.Since(start),
	}
	logger.Info("campaign processed",
		"customers", run.Summary.TotalCustomers,
		"avg_discount", run.Summary.AvgDiscount,
		"most_common_segment", string(run.Summary.MostCommonSegment),
		"duration_ms", run.Duration.Milliseconds())
	return run, nil
}
