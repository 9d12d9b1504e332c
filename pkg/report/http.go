package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/inflammetry/platform/pkg/common/logger"
	"github.com/inflammetry/platform/pkg/common/models"
	"github.com/inflammetry/platform/pkg/stats"
	"github.com/inflammetry/platform/pkg/trial"
)

type HTTPHandler struct {
	service *Service
	watcher *Watcher
	maxBody int64
}

func NewHTTPHandler(service *Service, watcher *Watcher, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, watcher: watcher, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/analyses", h.handleAnalyse).Methods(http.MethodPost)
	router.HandleFunc("/analyses/csv", h.handleAnalyseCSV).Methods(http.MethodPost)
	router.HandleFunc("/analyses/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/studies/{study}/analyses", h.handleListByStudy).Methods(http.MethodGet)
	if h.watcher != nil {
		router.HandleFunc("/patients/{name}/observation-count", h.handleObservationCount).Methods(http.MethodGet)
	}
}

func (h *HTTPHandler) handleObservationCount(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	count, err := h.watcher.Count(r.Context(), name)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read observation tally")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patient_name": name,
		"observations": count,
	})
}

func (h *HTTPHandler) handleAnalyse(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid analysis payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.service.Analyse(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

// handleAnalyseCSV accepts raw trial data in the study CSV format: one
// patient per line, one comma-separated measurement per day.
func (h *HTTPHandler) handleAnalyseCSV(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	table, err := trial.Parse(r.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var threshold *float64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid threshold", http.StatusBadRequest)
			return
		}
		threshold = &value
	}

	rep, err := h.service.AnalyseTable(r.Context(), r.URL.Query().Get("study_id"), table, threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *HTTPHandler) handleListByStudy(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListByStudy(r.Context(), mux.Vars(r)["study"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stats.ErrNotTable),
		errors.Is(err, stats.ErrNotMatrix),
		errors.Is(err, stats.ErrNegative),
		errors.Is(err, stats.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Log.WithError(err).Error("analysis request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
