package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/patientcare/internal/metrics"
	"stealthcompany.com/patientcare/internal/patient"
	"stealthcompany.com/patientcare/internal/service"
	"stealthcompany.com/patientcare/internal/store"
)

// Handlers holds the route handlers and their service dependency.
type Handlers struct {
	svc *service.Service
}

// NewHandlers creates the handler set backed by svc.
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondOpError maps a service error to a status code and records the
// outcome. validationStatus lets the create path report validation
// failures as 400 while the partial-update path uses 422.
func respondOpError(w http.ResponseWriter, r *http.Request, op string, err error, validationStatus int) {
	var vErr *patient.ValidationError
	var stErr *store.Error

	switch {
	case errors.As(err, &vErr):
		log.Warn().
			Str("request_id", RequestID(r)).
			Str("field", vErr.Field).
			Str("reason", vErr.Reason).
			Msgf("Patient %s failed validation", op)
		metrics.RecordPatientOperation(op, "validation_failed")
		writeJSON(w, validationStatus, map[string]string{
			"error":   "Validation failed",
			"message": vErr.Error(),
		})

	case errors.Is(err, service.ErrNotFound):
		metrics.RecordPatientOperation(op, "not_found")
		writeError(w, http.StatusNotFound, "Patient not found")

	case errors.Is(err, service.ErrConflict):
		metrics.RecordPatientOperation(op, "conflict")
		writeError(w, http.StatusBadRequest, "Patient already exists")

	case errors.Is(err, service.ErrInvalidArgument):
		metrics.RecordPatientOperation(op, "invalid_argument")
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &stErr):
		log.Error().
			Err(err).
			Str("request_id", RequestID(r)).
			Str("store_op", stErr.Op).
			Msgf("Patient %s hit a storage failure", op)
		metrics.RecordPatientOperation(op, "storage_error")
		writeError(w, http.StatusInternalServerError, "Storage failure")

	default:
		log.Error().
			Err(err).
			Str("request_id", RequestID(r)).
			Msgf("Patient %s failed unexpectedly", op)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Home returns a welcome message.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Patient Management System API"})
}

// About describes the API.
func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "CRUD API for patient health records with derived BMI metrics",
	})
}

// ListPatients handles GET /patients.
func (h *Handlers) ListPatients(w http.ResponseWriter, r *http.Request) {
	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Msg("Listing all patients")

	all, err := h.svc.GetAll(r.Context())
	if err != nil {
		respondOpError(w, r, "list", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("list", "success")
	writeJSON(w, http.StatusOK, all)
}

// GetPatient handles GET /patients/{id}.
func (h *Handlers) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("id", id).
		Msg("Fetching patient")

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondOpError(w, r, "get", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("get", "success")
	writeJSON(w, http.StatusOK, p)
}

// FilterPatients handles GET /patients/filter.
func (h *Handlers) FilterPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := patient.Filter{
		City:   q.Get("city"),
		Gender: q.Get("gender"),
	}

	if raw := q.Get("min_age"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			metrics.RecordPatientOperation("filter", "invalid_argument")
			writeError(w, http.StatusBadRequest, "min_age must be a non-negative integer")
			return
		}
		f.MinAge = &v
	}
	if raw := q.Get("max_age"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v > 120 {
			metrics.RecordPatientOperation("filter", "invalid_argument")
			writeError(w, http.StatusBadRequest, "max_age must be an integer no greater than 120")
			return
		}
		f.MaxAge = &v
	}

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("city", f.City).
		Str("gender", f.Gender).
		Msg("Filtering patients")

	results, err := h.svc.Filter(r.Context(), f)
	if err != nil {
		respondOpError(w, r, "filter", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("filter", "success")
	writeJSON(w, http.StatusOK, results)
}

// SortPatients handles GET /patients/sort.
func (h *Handlers) SortPatients(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort_by")
	order := r.URL.Query().Get("order")

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("sort_by", sortBy).
		Str("order", order).
		Msg("Sorting patients")

	results, err := h.svc.Sort(r.Context(), sortBy, order)
	if err != nil {
		respondOpError(w, r, "sort", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("sort", "success")
	writeJSON(w, http.StatusOK, results)
}

// CreatePatient handles POST /patients.
func (h *Handlers) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var p patient.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", RequestID(r)).
			Msg("Failed to decode create payload")
		metrics.RecordPatientOperation("create", "invalid_json")
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("id", p.ID).
		Msg("Creating patient")

	created, err := h.svc.Create(r.Context(), p.ID, p.Attributes)
	if err != nil {
		respondOpError(w, r, "create", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("create", "success")
	writeJSON(w, http.StatusCreated, PatientResponse{
		Message: "Patient created successfully",
		Patient: created,
	})
}

// ReplacePatient handles PUT /patients/{id}.
func (h *Handlers) ReplacePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var p patient.Patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", RequestID(r)).
			Str("id", id).
			Msg("Failed to decode replace payload")
		metrics.RecordPatientOperation("replace", "invalid_json")
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("id", id).
		Msg("Replacing patient")

	replaced, err := h.svc.Replace(r.Context(), id, p.ID, p.Attributes)
	if err != nil {
		respondOpError(w, r, "replace", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("replace", "success")
	writeJSON(w, http.StatusOK, PatientResponse{
		Message: "Patient replaced successfully",
		Patient: replaced,
	})
}

// UpdatePatient handles PATCH /patients/{id}.
func (h *Handlers) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var u patient.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", RequestID(r)).
			Str("id", id).
			Msg("Failed to decode update payload")
		metrics.RecordPatientOperation("update", "invalid_json")
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("id", id).
		Msg("Updating patient")

	updated, err := h.svc.Update(r.Context(), id, u)
	if err != nil {
		respondOpError(w, r, "update", err, http.StatusUnprocessableEntity)
		return
	}

	metrics.RecordPatientOperation("update", "success")
	writeJSON(w, http.StatusOK, PatientResponse{
		Message: "Patient updated successfully",
		Patient: updated,
	})
}

// DeletePatient handles DELETE /patients/{id}.
func (h *Handlers) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", RequestID(r)).
		Str("id", id).
		Msg("Deleting patient")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondOpError(w, r, "delete", err, http.StatusBadRequest)
		return
	}

	metrics.RecordPatientOperation("delete", "success")
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Patient deleted successfully"})
}
