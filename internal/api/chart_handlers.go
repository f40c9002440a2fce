package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/discount-generator/internal/chart"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/pkg/httputil"
	"github.com/ignite/discount-generator/internal/report"
)

type chartRenderer func(buf *bytes.Buffer, offers []domain.OfferRecord, opts chart.Options) error

var charts = map[string]chartRenderer{
	"segments": func(buf *bytes.Buffer, offers []domain.OfferRecord, opts chart.Options) error {
		return chart.Bar(buf, report.SegmentDistribution(offers), opts)
	},
	"discounts": func(buf *bytes.Buffer, offers []domain.OfferRecord, opts chart.Options) error {
		return chart.Bar(buf, report.DiscountHistogram(offers, report.DefaultHistogramBins), opts)
	},
	"avg-discount": func(buf *bytes.Buffer, offers []domain.OfferRecord, opts chart.Options) error {
		return chart.Bar(buf, report.AvgDiscountBySegment(offers), opts)
	},
	"validity": func(buf *bytes.Buffer, offers []domain.OfferRecord, opts chart.Options) error {
		return chart.Box(buf, "Validity Period by Segment", "Days", report.ValidityBySegment(offers), opts)
	},
}

// HandleChart renders one of the dashboard charts as PNG. Optional w and h
// query parameters override the canvas size.
//
//	GET /api/sessions/{id}/charts/{name}.png
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	render, ok := charts[chi.URLParam(r, "name")]
	if !ok {
		httputil.Error(w, http.StatusNotFound, "unknown chart")
		return
	}

	opts := chart.DefaultOptions
	if v, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil && v > 0 && v <= 2000 {
		opts.Width = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("h")); err == nil && v > 0 && v <= 2000 {
		opts.Height = v
	}

	run, err := h.svc.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, run.Offers, opts); err != nil {
		if errors.Is(err, chart.ErrTooSmall) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respondSafeError(w, http.StatusInternalServerError, err, "Failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.Blob(w, "image/png", buf.Bytes())
}
