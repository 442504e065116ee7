package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/astrometa/internal/apperr"
	"github.com/starford/astrometa/internal/indexer"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// reserved query parameters that are not metadata criteria.
var reservedParams = map[string]bool{"enrich": true}

// criteriaFromQuery turns query parameters into filter criteria. Repeated
// parameters and pipe-separated values both widen the accepted set.
func criteriaFromQuery(r *http.Request) indexer.Criteria {
	criteria := make(indexer.Criteria)
	for key, vals := range r.URL.Query() {
		lk := strings.ToLower(key)
		if reservedParams[lk] {
			continue
		}
		for _, v := range vals {
			for _, part := range strings.Split(v, "|") {
				if part != "" {
					criteria[lk] = append(criteria[lk], part)
				}
			}
		}
	}
	return criteria
}

// QueryMetadata handles GET /api/metadata.
//
//	@Summary		Scan and filter frame metadata
//	@Tags			metadata
//	@Produce		json
//	@Param			enrich	query		bool	false	"Force header reads"
//	@Param			filter	query		string	false	"Any other parameter filters on that field, e.g. ?type=LIGHT&filter=Ha|OIII"
//	@Success		200		{object}	QueryResult
//	@Security		BearerAuth
//	@Router			/metadata [get]
func (h *Handler) QueryMetadata(w http.ResponseWriter, r *http.Request) {
	enrichParam := r.URL.Query().Get("enrich")
	enrich := enrichParam == "1" || enrichParam == "true"
	criteria := criteriaFromQuery(r)

	result, err := h.svc.Query(r.Context(), criteria, enrich)
	if err != nil {
		slog.Error("metadata query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetFile handles GET /api/metadata/file.
//
//	@Summary		Get metadata and raw headers for one file
//	@Tags			metadata
//	@Produce		json
//	@Param			path	query		string	true	"Absolute file path"
//	@Success		200		{object}	FileDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/metadata/file [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	detail, err := h.svc.FileDetail(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("file detail failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Calibration handles GET /api/calibration.
//
//	@Summary		Find matching calibration frames for a light frame
//	@Tags			calibration
//	@Produce		json
//	@Param			light	query		string	true	"Absolute light frame path"
//	@Success		200		{object}	CalibrationResult
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/calibration [get]
func (h *Handler) Calibration(w http.ResponseWriter, r *http.Request) {
	light := r.URL.Query().Get("light")
	if light == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'light' is required"))
		return
	}
	result, err := h.svc.Calibration(r.Context(), light)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("calibration match failed", slog.String("light", light), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
