package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clinicboard/clinicboard/services/dashboard-service/internal/stats"
)

type fakeSource struct {
	summary     stats.Summary
	summaryErr  error
	lastToday   string
	monthly     []stats.MonthCount
	lastSince   string
	doctors     []stats.DoctorCount
	facts       []stats.PatientFact
	factsErr    error
	statusCount []stats.StatusCount
}

func (f *fakeSource) Summary(_ context.Context, today string) (stats.Summary, error) {
	f.lastToday = today
	return f.summary, f.summaryErr
}

func (f *fakeSource) AppointmentsOn(_ context.Context, date string) ([]stats.AppointmentRow, error) {
	f.lastToday = date
	return nil, nil
}

func (f *fakeSource) RecentAppointments(_ context.Context, _ int) ([]stats.AppointmentRow, error) {
	return nil, nil
}

func (f *fakeSource) StatusCounts(_ context.Context) ([]stats.StatusCount, error) {
	return f.statusCount, nil
}

func (f *fakeSource) MonthlyCounts(_ context.Context, since string) ([]stats.MonthCount, error) {
	f.lastSince = since
	return f.monthly, nil
}

func (f *fakeSource) DoctorCounts(_ context.Context) ([]stats.DoctorCount, error) {
	return f.doctors, nil
}

func (f *fakeSource) PatientFacts(_ context.Context) ([]stats.PatientFact, error) {
	return f.facts, f.factsErr
}

func (f *fakeSource) DailyMetrics(_ context.Context, _ string) ([]stats.DailyMetric, error) {
	return nil, nil
}

func newDashboardServer(source stats.Source, now time.Time) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	h := NewDashboardHandler(source, logger)
	h.now = func() time.Time { return now }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/dashboard/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/dashboard/today-appointments", h.TodayAppointments)
	mux.HandleFunc("GET /api/v1/dashboard/recent-appointments", h.RecentAppointments)
	mux.HandleFunc("GET /api/v1/dashboard/appointments-by-status", h.AppointmentsByStatus)
	mux.HandleFunc("GET /api/v1/dashboard/appointments-by-month", h.AppointmentsByMonth)
	mux.HandleFunc("GET /api/v1/dashboard/top-doctors", h.TopDoctors)
	mux.HandleFunc("GET /api/v1/dashboard/patient-demographics", h.PatientDemographics)
	mux.HandleFunc("GET /api/v1/dashboard/daily-metrics", h.DailyMetrics)
	return httptest.NewServer(mux)
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}
	return resp.StatusCode
}

func TestStats_SummaryKeys(t *testing.T) {
	source := &fakeSource{summary: stats.Summary{
		TotalPatients:         12,
		TotalDoctors:          3,
		TotalAppointments:     40,
		TodayAppointments:     5,
		PendingAppointments:   7,
		CompletedAppointments: 30,
	}}
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	srv := newDashboardServer(source, now)
	defer srv.Close()

	var got map[string]int
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/stats", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, key := range []string{"totalPatients", "totalDoctors", "totalAppointments", "todayAppointments", "pendingAppointments", "completedAppointments"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing key %q in %v", key, got)
		}
	}
	if got["pendingAppointments"] != 7 {
		t.Fatalf("expected pendingAppointments 7, got %d", got["pendingAppointments"])
	}
	if source.lastToday != "2026-08-31" {
		t.Fatalf("expected today 2026-08-31, got %q", source.lastToday)
	}
}

func TestStats_SourceFailureIs503(t *testing.T) {
	source := &fakeSource{summaryErr: errors.New("connection refused")}
	srv := newDashboardServer(source, time.Now())
	defer srv.Close()

	if code := getJSON(t, srv.URL+"/api/v1/dashboard/stats", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	// Other endpoints keep serving.
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/appointments-by-status", nil); code != http.StatusOK {
		t.Fatalf("expected 200 from independent endpoint, got %d", code)
	}
}

func TestAppointmentsByStatus_CountsSumToStatsTotal(t *testing.T) {
	source := &fakeSource{
		summary: stats.Summary{TotalAppointments: 9},
		statusCount: []stats.StatusCount{
			{Status: "scheduled", Count: 4},
			{Status: "completed", Count: 3},
			{Status: "cancelled", Count: 1},
			{Status: "no-show", Count: 1},
		},
	}
	srv := newDashboardServer(source, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	defer srv.Close()

	var summary map[string]int
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/stats", &summary); code != http.StatusOK {
		t.Fatalf("expected 200 from stats, got %d", code)
	}
	var byStatus []stats.StatusCount
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/appointments-by-status", &byStatus); code != http.StatusOK {
		t.Fatalf("expected 200 from breakdown, got %d", code)
	}

	sum := 0
	for _, c := range byStatus {
		sum += c.Count
	}
	if sum != summary["totalAppointments"] {
		t.Fatalf("breakdown sums to %d, stats reports %d", sum, summary["totalAppointments"])
	}
}

func TestAppointmentsByMonth_SixZeroFilledMonths(t *testing.T) {
	source := &fakeSource{monthly: []stats.MonthCount{{Year: 2026, Month: 8, Count: 3}}}
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	srv := newDashboardServer(source, now)
	defer srv.Close()

	var got []stats.MonthCount
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/appointments-by-month", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 months, got %d", len(got))
	}
	if source.lastSince != "2026-03-01" {
		t.Fatalf("expected since 2026-03-01, got %q", source.lastSince)
	}
	if got[5].Count != 3 {
		t.Fatalf("expected current month count 3, got %+v", got[5])
	}
}

func TestTopDoctors_LimitsToFive(t *testing.T) {
	source := &fakeSource{}
	for i := 0; i < 8; i++ {
		source.doctors = append(source.doctors, stats.DoctorCount{
			DoctorID: string(rune('a' + i)),
			Name:     string(rune('a' + i)),
			Count:    i,
		})
	}
	srv := newDashboardServer(source, time.Now())
	defer srv.Close()

	var got []stats.DoctorCount
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/top-doctors", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 doctors, got %d", len(got))
	}
	if got[0].Count != 7 {
		t.Fatalf("expected busiest doctor first, got %+v", got[0])
	}
}

func TestPatientDemographics_Shape(t *testing.T) {
	source := &fakeSource{facts: []stats.PatientFact{
		{Gender: "Female", Age: 40},
		{Gender: "Male", Age: 12},
	}}
	srv := newDashboardServer(source, time.Now())
	defer srv.Close()

	var got struct {
		GenderStats []stats.GenderCount `json:"genderStats"`
		AgeStats    []stats.BandCount   `json:"ageStats"`
	}
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/patient-demographics", &got); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(got.GenderStats) != 2 {
		t.Fatalf("expected 2 gender buckets, got %v", got.GenderStats)
	}
	if len(got.AgeStats) != len(stats.AgeBands) {
		t.Fatalf("expected %d age bands, got %d", len(stats.AgeBands), len(got.AgeStats))
	}
}

func TestRecentAppointments_LimitValidation(t *testing.T) {
	srv := newDashboardServer(&fakeSource{}, time.Now())
	defer srv.Close()

	if code := getJSON(t, srv.URL+"/api/v1/dashboard/recent-appointments?limit=0", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0, got %d", code)
	}
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/recent-appointments?limit=999", nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=999, got %d", code)
	}
	if code := getJSON(t, srv.URL+"/api/v1/dashboard/recent-appointments", nil); code != http.StatusOK {
		t.Fatalf("expected 200 for default limit, got %d", code)
	}
}
