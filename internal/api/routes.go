package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stealthcompany.com/patientcare/internal/metrics"
)

// SetupRoutes configures and returns the HTTP router. The filter and sort
// routes are registered before /patients/{id} so "filter" and "sort" are
// never taken for patient ids.
func SetupRoutes(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	// Middleware for all routes
	r.Use(RequestIDMiddleware)
	r.Use(metrics.Middleware)

	// Informational routes
	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/about", h.About).Methods("GET")

	// Patient record routes
	r.HandleFunc("/patients", h.ListPatients).Methods("GET")
	r.HandleFunc("/patients", h.CreatePatient).Methods("POST")
	r.HandleFunc("/patients/filter", h.FilterPatients).Methods("GET")
	r.HandleFunc("/patients/sort", h.SortPatients).Methods("GET")
	r.HandleFunc("/patients/{id}", h.GetPatient).Methods("GET")
	r.HandleFunc("/patients/{id}", h.ReplacePatient).Methods("PUT")
	r.HandleFunc("/patients/{id}", h.UpdatePatient).Methods("PATCH")
	r.HandleFunc("/patients/{id}", h.DeletePatient).Methods("DELETE")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
