package api

import "stealthcompany.com/patientcare/internal/patient"

// PatientResponse pairs a user-facing message with the affected record.
type PatientResponse struct {
	Message string          `json:"message"`
	Patient patient.Patient `json:"patient"`
}

// MessageResponse is the body of informational and delete responses.
type MessageResponse struct {
	Message string `json:"message"`
}
