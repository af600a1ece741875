package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/scheduling"
)

// Lifecycle is the slice of the scheduling engine the appointment
// handlers need.
type Lifecycle interface {
	Book(ctx context.Context, req scheduling.BookRequest) (model.AppointmentView, error)
	Update(ctx context.Context, id string, p model.AppointmentPatch) (model.AppointmentView, error)
	SetStatus(ctx context.Context, id string, status model.Status, upd model.StatusUpdate) (model.AppointmentView, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.AppointmentView, error)
	List(ctx context.Context, f model.AppointmentFilter) ([]model.AppointmentView, error)
}

type AppointmentHandler struct {
	engine Lifecycle
	logger *slog.Logger
}

func NewAppointmentHandler(engine Lifecycle, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{engine: engine, logger: logger}
}

type createAppointmentRequest struct {
	Patient     string `json:"patient"`
	Doctor      string `json:"doctor"`
	Date        string `json:"appointmentDate"`
	Time        string `json:"appointmentTime"`
	Notes       string `json:"notes"`
	Symptoms    string `json:"symptoms"`
	IsEmergency bool   `json:"isEmergency"`
}

type updateAppointmentRequest struct {
	Doctor       *string `json:"doctor"`
	Date         *string `json:"appointmentDate"`
	Time         *string `json:"appointmentTime"`
	Notes        *string `json:"notes"`
	Symptoms     *string `json:"symptoms"`
	FollowUpDate *string `json:"followUpDate"`
	IsEmergency  *bool   `json:"isEmergency"`
}

type statusUpdateRequest struct {
	Status       string `json:"status"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	FollowUpDate string `json:"followUpDate"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	view, err := h.engine.Book(r.Context(), scheduling.BookRequest{
		PatientID:   req.Patient,
		DoctorID:    req.Doctor,
		Date:        req.Date,
		Time:        req.Time,
		Notes:       strings.TrimSpace(req.Notes),
		Symptoms:    strings.TrimSpace(req.Symptoms),
		IsEmergency: req.IsEmergency,
	})
	if err != nil {
		h.logger.Warn("book appointment failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.AppointmentFilter{
		Date:      strings.TrimSpace(q.Get("date")),
		DoctorID:  strings.TrimSpace(q.Get("doctor")),
		PatientID: strings.TrimSpace(q.Get("patient")),
	}

	views, err := h.engine.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if views == nil {
		views = []model.AppointmentView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAppointmentRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	view, err := h.engine.Update(r.Context(), r.PathValue("id"), model.AppointmentPatch{
		DoctorID:     req.Doctor,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
		Symptoms:     req.Symptoms,
		FollowUpDate: req.FollowUpDate,
		IsEmergency:  req.IsEmergency,
	})
	if err != nil {
		h.logger.Warn("update appointment failed", "error", err, "appointment_id", r.PathValue("id"))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	view, err := h.engine.SetStatus(r.Context(), r.PathValue("id"), model.Status(strings.TrimSpace(req.Status)), model.StatusUpdate{
		Diagnosis:    strings.TrimSpace(req.Diagnosis),
		Prescription: strings.TrimSpace(req.Prescription),
		FollowUpDate: strings.TrimSpace(req.FollowUpDate),
	})
	if err != nil {
		h.logger.Warn("status change failed", "error", err, "appointment_id", r.PathValue("id"))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}
