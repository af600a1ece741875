package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

type PatientStore interface {
	CreatePatient(ctx context.Context, p *model.Patient) error
	GetPatient(ctx context.Context, id string) (model.Patient, error)
	ListPatients(ctx context.Context, limit int) ([]model.Patient, error)
	UpdatePatient(ctx context.Context, p *model.Patient) error
	DeletePatient(ctx context.Context, id string) error
}

type PatientHandler struct {
	store  PatientStore
	logger *slog.Logger
}

func NewPatientHandler(store PatientStore, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{store: store, logger: logger}
}

type patientRequest struct {
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone"`
	Age              int                     `json:"age"`
	Gender           string                  `json:"gender"`
	Address          string                  `json:"address"`
	MedicalHistory   string                  `json:"medicalHistory"`
	EmergencyContact *model.EmergencyContact `json:"emergencyContact"`
}

func (req *patientRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" {
		return "name is required"
	}
	if req.Email == "" {
		return "email is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is not a valid address"
	}
	if req.Phone == "" {
		return "phone is required"
	}
	if req.Age < 0 || req.Age > 150 {
		return "age must be between 0 and 150"
	}
	if !model.Gender(req.Gender).Valid() {
		return "gender must be one of Male, Female, Other"
	}
	return ""
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	p := model.Patient{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Age:              req.Age,
		Gender:           model.Gender(req.Gender),
		Address:          strings.TrimSpace(req.Address),
		MedicalHistory:   strings.TrimSpace(req.MedicalHistory),
		EmergencyContact: req.EmergencyContact,
	}
	if err := h.store.CreatePatient(r.Context(), &p); err != nil {
		h.logger.Warn("create patient failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeBadRequest(w, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	patients, err := h.store.ListPatients(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	writeJSON(w, http.StatusOK, patients)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	p := model.Patient{
		ID:               r.PathValue("id"),
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Age:              req.Age,
		Gender:           model.Gender(req.Gender),
		Address:          strings.TrimSpace(req.Address),
		MedicalHistory:   strings.TrimSpace(req.MedicalHistory),
		EmergencyContact: req.EmergencyContact,
	}
	if err := h.store.UpdatePatient(r.Context(), &p); err != nil {
		h.logger.Warn("update patient failed", "error", err, "patient_id", p.ID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeletePatient(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "patient deleted"})
}
