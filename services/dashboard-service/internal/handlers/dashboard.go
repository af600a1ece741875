package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/stats"
)

const dateLayout = "2006-01-02"

// DashboardHandler serves the aggregation endpoints. Each endpoint
// queries independently; a failure returns 503 for that endpoint only.
type DashboardHandler struct {
	source stats.Source
	logger *slog.Logger
	now    func() time.Time
}

func NewDashboardHandler(source stats.Source, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{source: source, logger: logger, now: time.Now}
}

func (h *DashboardHandler) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *DashboardHandler) unavailable(w http.ResponseWriter, op string, err error) {
	h.logger.Error("dashboard query failed", "op", op, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"store unavailable","kind":"store_unavailable"}`))
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	today := h.now().UTC().Format(dateLayout)
	s, err := h.source.Summary(r.Context(), today)
	if err != nil {
		h.unavailable(w, "summary", err)
		return
	}
	h.writeJSON(w, s)
}

func (h *DashboardHandler) TodayAppointments(w http.ResponseWriter, r *http.Request) {
	today := h.now().UTC().Format(dateLayout)
	rows, err := h.source.AppointmentsOn(r.Context(), today)
	if err != nil {
		h.unavailable(w, "today_appointments", err)
		return
	}
	if rows == nil {
		rows = []stats.AppointmentRow{}
	}
	h.writeJSON(w, rows)
}

func (h *DashboardHandler) RecentAppointments(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "limit must be an integer between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := h.source.RecentAppointments(r.Context(), limit)
	if err != nil {
		h.unavailable(w, "recent_appointments", err)
		return
	}
	if rows == nil {
		rows = []stats.AppointmentRow{}
	}
	h.writeJSON(w, rows)
}

func (h *DashboardHandler) AppointmentsByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.source.StatusCounts(r.Context())
	if err != nil {
		h.unavailable(w, "appointments_by_status", err)
		return
	}
	if counts == nil {
		counts = []stats.StatusCount{}
	}
	h.writeJSON(w, counts)
}

// AppointmentsByMonth returns a contiguous six month series ending at
// the current month, zero-filled where no appointments fall.
func (h *DashboardHandler) AppointmentsByMonth(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)

	counts, err := h.source.MonthlyCounts(r.Context(), since.Format(dateLayout))
	if err != nil {
		h.unavailable(w, "appointments_by_month", err)
		return
	}
	h.writeJSON(w, stats.FillMonths(counts, now, 6))
}

func (h *DashboardHandler) TopDoctors(w http.ResponseWriter, r *http.Request) {
	counts, err := h.source.DoctorCounts(r.Context())
	if err != nil {
		h.unavailable(w, "top_doctors", err)
		return
	}
	h.writeJSON(w, stats.TopDoctors(counts, 5))
}

type demographicsResponse struct {
	GenderStats []stats.GenderCount `json:"genderStats"`
	AgeStats    []stats.BandCount   `json:"ageStats"`
}

func (h *DashboardHandler) PatientDemographics(w http.ResponseWriter, r *http.Request) {
	facts, err := h.source.PatientFacts(r.Context())
	if err != nil {
		h.unavailable(w, "patient_demographics", err)
		return
	}
	genders, bands := stats.Demographics(facts)
	if genders == nil {
		genders = []stats.GenderCount{}
	}
	h.writeJSON(w, demographicsResponse{GenderStats: genders, AgeStats: bands})
}

// DailyMetrics exposes the event-stream rollup for the last 30 days.
func (h *DashboardHandler) DailyMetrics(w http.ResponseWriter, r *http.Request) {
	since := h.now().UTC().AddDate(0, 0, -29).Format(dateLayout)
	metrics, err := h.source.DailyMetrics(r.Context(), since)
	if err != nil {
		h.unavailable(w, "daily_metrics", err)
		return
	}
	if metrics == nil {
		metrics = []stats.DailyMetric{}
	}
	h.writeJSON(w, metrics)
}
