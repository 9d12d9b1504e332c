package study

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/inflammetry/platform/pkg/common/logger"
	"github.com/inflammetry/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/patients", h.handleCreatePatient).Methods(http.MethodPost)
	router.HandleFunc("/patients/{name}", h.handleGetPatient).Methods(http.MethodGet)
	router.HandleFunc("/patients/{name}/observations", h.handleRecordObservation).Methods(http.MethodPost)
	router.HandleFunc("/patients/{name}/observations/last", h.handleLastObservation).Methods(http.MethodGet)
	router.HandleFunc("/doctors", h.handleCreateDoctor).Methods(http.MethodPost)
	router.HandleFunc("/doctors/{name}", h.handleGetDoctor).Methods(http.MethodGet)
	router.HandleFunc("/doctors/{name}/patients/{patient}", h.handleAssignPatient).Methods(http.MethodPut)
}

func (h *HTTPHandler) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var req models.PatientRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.service.RegisterPatient(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err, "failed to register patient")
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetPatient(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err, "failed to fetch patient")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleRecordObservation(w http.ResponseWriter, r *http.Request) {
	var req models.ObservationRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.RecordObservation(r.Context(), mux.Vars(r)["name"], req.Value, req.Day)
	if err != nil {
		h.writeError(w, err, "failed to record observation")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) handleLastObservation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.LastObservation(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err, "failed to fetch last observation")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleCreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req models.DoctorRequest
	if !h.decode(w, r, &req) {
		return
	}

	rec, err := h.service.RegisterDoctor(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, err, "failed to register doctor")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleGetDoctor(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetDoctor(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeError(w, err, "failed to fetch doctor")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleAssignPatient(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.service.AssignPatient(r.Context(), vars["name"], vars["patient"]); err != nil {
		h.writeError(w, err, "failed to assign patient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Log.WithError(err).Warn("invalid request payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoObservations):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Log.WithError(err).Error(msg)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
