package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/discount-generator/internal/datanorm"
	"github.com/ignite/discount-generator/internal/domain"
	"github.com/ignite/discount-generator/internal/export"
	"github.com/ignite/discount-generator/internal/pkg/httputil"
	"github.com/ignite/discount-generator/internal/report"
	"github.com/ignite/discount-generator/internal/service/campaign"
)

// sessionView is the public shape of a session. The normalized table is
// never echoed back; offers are served by their own endpoint.
type sessionView struct {
	ID        string                 `json:"id"`
	Filename  string                 `json:"filename"`
	Preview   report.PreviewStats    `json:"preview"`
	Import    *datanorm.ImportResult `json:"import,omitempty"`
	Processed bool                   `json:"processed"`
	Summary   *report.Summary        `json:"summary,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func newSessionView(s *campaign.Session) sessionView {
	v := sessionView{
		ID:        s.ID,
		Filename:  s.Filename,
		Preview:   s.Preview,
		Import:    s.Import,
		Processed: s.Processed(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Run != nil {
		v.Summary = &s.Run.Summary
	}
	return v
}

// HandleUpload accepts a multipart "file" field holding a CSV or xlsx export.
//
//	POST /api/uploads
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		httputil.Error(w, http.StatusBadRequest, "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	sess, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, newSessionView(sess))
}

// HandleImportSource loads the configured source query into a new session.
//
//	POST /api/source/import
func (h *Handlers) HandleImportSource(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ImportSource(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, newSessionView(sess))
}

// HandleSample processes the built-in three-customer sample.
//
//	POST /api/sample
func (h *Handlers) HandleSample(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ProcessSample(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, map[string]interface{}{
		"session": newSessionView(sess),
		"offers":  sess.Run.Offers,
	})
}

// HandleGetSession returns the preview and processing state of a session.
//
//	GET /api/sessions/{id}
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newSessionView(sess))
}

// HandleDeleteSession discards a session.
//
//	DELETE /api/sessions/{id}
func (h *Handlers) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.NoContent(w)
}

// HandleProcess classifies and prices the session's customers.
//
//	POST /api/sessions/{id}/process
func (h *Handlers) HandleProcess(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"processed_at": run.ProcessedAt,
		"summary":      run.Summary,
		"segments":     run.Segments,
		"duration_ms":  run.Duration.Milliseconds(),
	})
}

// HandleOffers lists offer rows, optionally filtered by ?segment=.
//
//	GET /api/sessions/{id}/offers
func (h *Handlers) HandleOffers(w http.ResponseWriter, r *http.Request) {
	segment := domain.Segment(r.URL.Query().Get("segment"))
	offers, err := h.svc.Offers(r.Context(), chi.URLParam(r, "id"), segment)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"offers": offers,
		"count":  len(offers),
	})
}

// HandleExplain returns the rule trace behind one row's segment.
//
//	GET /api/sessions/{id}/offers/{row}/explain
func (h *Handlers) HandleExplain(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid row %q", chi.URLParam(r, "row")))
		return
	}
	offer, exp, err := h.svc.Explain(r.Context(), chi.URLParam(r, "id"), row)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"offer":       offer,
		"explanation": exp,
	})
}

// HandleSummary returns the campaign summary.
//
//	GET /api/sessions/{id}/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, run.Summary)
}

// HandleSegments returns the per-segment analysis.
//
//	GET /api/sessions/{id}/segments
func (h *Handlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"segments": run.Segments})
}

// HandleExport streams the results workbook.
//
//	GET /api/sessions/{id}/export
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.svc.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.Attachment(w, export.ContentType, name, data)
}

// HandlePublish uploads the workbook to the export store and returns its location.
//
//	POST /api/sessions/{id}/export
func (h *Handlers) HandlePublish(w http.ResponseWriter, r *http.Request) {
	obj, err := h.svc.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, obj)
}
