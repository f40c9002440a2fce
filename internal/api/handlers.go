// Package api serves the discount dashboard over HTTP: spreadsheet upload,
// processing, result inspection, charts and workbook export.
package api

import (
	"errors"
	"net/http"

	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/pkg/httputil"
	"github.com/ignite/discount-generator/internal/service/campaign"
	"github.com/ignite/discount-generator/internal/storage"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	svc            *campaign.Service
	maxUploadBytes int64
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *campaign.Service, maxUploadBytes int64) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Handlers{svc: svc, maxUploadBytes: maxUploadBytes}
}

// respondServiceError maps service and domain errors to HTTP statuses.
// Client errors carry their message; everything else is sanitized.
func respondServiceError(w http.ResponseWriter, err error) {
	var schemaErr *domain.SchemaError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, campaign.ErrSessionNotFound), errors.Is(err, campaign.ErrRowOutOfRange):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, campaign.ErrNotProcessed), errors.Is(err, campaign.ErrSessionBusy):
		httputil.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, campaign.ErrInvalidSegment),
		errors.Is(err, datanorm.ErrEmptyFile),
		errors.Is(err, datanorm.ErrUnsupportedFormat),
		errors.Is(err, datanorm.ErrNoSheets):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &schemaErr):
		httputil.ErrorWithDetails(w, http.StatusUnprocessableEntity, err.Error(), schemaErr.Missing)
	case errors.As(err, &maxErr):
		httputil.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
	case errors.Is(err, storage.ErrNotConfigured):
		respondSafeError(w, http.StatusServiceUnavailable, err, "Export storage is not configured")
	case errors.Is(err, campaign.ErrNoSource):
		httputil.Error(w, http.StatusServiceUnavailable, "source database is not configured")
	default:
		respondSafeError(w, http.StatusInternalServerError, err, safeErrorMessage(http.StatusInternalServerError, err))
	}
}
