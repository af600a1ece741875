package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/availability"
	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d *model.Doctor) error
	GetDoctor(ctx context.Context, id string) (model.Doctor, error)
	ListDoctors(ctx context.Context, limit int) ([]model.Doctor, error)
	ListDoctorsBySpecialization(ctx context.Context, specialization string) ([]model.Doctor, error)
	SearchDoctors(ctx context.Context, query string) ([]model.Doctor, error)
	UpdateDoctor(ctx context.Context, d *model.Doctor) error
	DeactivateDoctor(ctx context.Context, id string) error
	BookedTimes(ctx context.Context, doctorID, date string) ([]string, error)
}

// SlotConfig describes the clinic working day that open-slot listings
// are computed against.
type SlotConfig struct {
	DayStart string // "09:00"
	DayEnd   string // "17:00"
	Step     time.Duration
}

type DoctorHandler struct {
	store  DoctorStore
	slots  SlotConfig
	logger *slog.Logger
}

func NewDoctorHandler(store DoctorStore, slots SlotConfig, logger *slog.Logger) *DoctorHandler {
	return &DoctorHandler{store: store, slots: slots, logger: logger}
}

type doctorRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Specialization string          `json:"specialization"`
	Experience     int             `json:"experience"`
	Qualification  string          `json:"qualification"`
	LicenseNumber  string          `json:"licenseNumber"`
	Availability   json.RawMessage `json:"availability"`
}

func (req *doctorRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Specialization = strings.TrimSpace(req.Specialization)

	if req.Name == "" {
		return "name is required"
	}
	if req.Email == "" {
		return "email is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is not a valid address"
	}
	if req.Specialization == "" {
		return "specialization is required"
	}
	if req.Experience < 0 {
		return "experience must not be negative"
	}
	return ""
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	d := model.Doctor{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          strings.TrimSpace(req.Phone),
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Qualification:  strings.TrimSpace(req.Qualification),
		LicenseNumber:  strings.TrimSpace(req.LicenseNumber),
		Availability:   req.Availability,
	}
	if err := h.store.CreateDoctor(r.Context(), &d); err != nil {
		h.logger.Warn("create doctor failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		doctors []model.Doctor
		err     error
	)
	switch {
	case strings.TrimSpace(q.Get("search")) != "":
		doctors, err = h.store.SearchDoctors(r.Context(), strings.TrimSpace(q.Get("search")))
	case strings.TrimSpace(q.Get("specialization")) != "":
		doctors, err = h.store.ListDoctorsBySpecialization(r.Context(), strings.TrimSpace(q.Get("specialization")))
	default:
		limit := 100
		if raw := q.Get("limit"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n < 1 || n > 500 {
				writeBadRequest(w, "limit must be an integer between 1 and 500")
				return
			}
			limit = n
		}
		doctors, err = h.store.ListDoctors(r.Context(), limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if doctors == nil {
		doctors = []model.Doctor{}
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.GetDoctor(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := decodeStrict(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	d := model.Doctor{
		ID:             r.PathValue("id"),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          strings.TrimSpace(req.Phone),
		Specialization: req.Specialization,
		Experience:     req.Experience,
		Qualification:  strings.TrimSpace(req.Qualification),
		LicenseNumber:  strings.TrimSpace(req.LicenseNumber),
		Availability:   req.Availability,
	}
	if err := h.store.UpdateDoctor(r.Context(), &d); err != nil {
		h.logger.Warn("update doctor failed", "error", err, "doctor_id", d.ID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete deactivates a doctor rather than removing the row, so existing
// appointments keep resolving their reference.
func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeactivateDoctor(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "doctor deactivated"})
}

type openSlotsResponse struct {
	DoctorID string   `json:"doctorId"`
	Date     string   `json:"date"`
	Slots    []string `json:"slots"`
}

// OpenSlots lists the slot tokens still free for a doctor on a date.
// The grid comes from the configured working day; tokens held by an
// active appointment are removed.
func (h *DoctorHandler) OpenSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorID := strings.TrimSpace(q.Get("doctor"))
	date := strings.TrimSpace(q.Get("date"))

	if doctorID == "" {
		writeBadRequest(w, "doctor is required")
		return
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		writeBadRequest(w, "date must be formatted "+model.DateLayout)
		return
	}

	if _, err := h.store.GetDoctor(r.Context(), doctorID); err != nil {
		writeError(w, err)
		return
	}
	booked, err := h.store.BookedTimes(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	slots, err := availability.SlotTokens(h.slots.DayStart, h.slots.DayEnd, h.slots.Step, booked)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, openSlotsResponse{DoctorID: doctorID, Date: date, Slots: slots})
}
