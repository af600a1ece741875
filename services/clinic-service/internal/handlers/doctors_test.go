package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

type fakeDoctorStore struct {
	doctors map[string]model.Doctor
	booked  []string
}

func (f *fakeDoctorStore) CreateDoctor(_ context.Context, d *model.Doctor) error {
	d.ID = "d1"
	d.IsActive = true
	return nil
}

func (f *fakeDoctorStore) GetDoctor(_ context.Context, id string) (model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return model.Doctor{}, model.ErrNotFound
	}
	return d, nil
}

func (f *fakeDoctorStore) ListDoctors(_ context.Context, _ int) ([]model.Doctor, error) {
	ids := make([]string, 0, len(f.doctors))
	for id := range f.doctors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var active []model.Doctor
	for _, id := range ids {
		if d := f.doctors[id]; d.IsActive {
			active = append(active, d)
		}
	}
	return active, nil
}

func (f *fakeDoctorStore) ListDoctorsBySpecialization(_ context.Context, _ string) ([]model.Doctor, error) {
	return nil, nil
}

func (f *fakeDoctorStore) SearchDoctors(_ context.Context, _ string) ([]model.Doctor, error) {
	return nil, nil
}

func (f *fakeDoctorStore) UpdateDoctor(_ context.Context, _ *model.Doctor) error {
	return model.ErrNotFound
}

func (f *fakeDoctorStore) DeactivateDoctor(_ context.Context, id string) error {
	d, ok := f.doctors[id]
	if !ok {
		return model.ErrNotFound
	}
	d.IsActive = false
	f.doctors[id] = d
	return nil
}

func (f *fakeDoctorStore) BookedTimes(_ context.Context, _, _ string) ([]string, error) {
	return f.booked, nil
}

func newDoctorServer(store DoctorStore) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	h := NewDoctorHandler(store, SlotConfig{DayStart: "09:00", DayEnd: "11:00", Step: 30 * time.Minute}, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/doctors", h.Create)
	mux.HandleFunc("GET /api/v1/doctors", h.List)
	mux.HandleFunc("GET /api/v1/doctors/slots", h.OpenSlots)
	mux.HandleFunc("GET /api/v1/doctors/{id}", h.Get)
	mux.HandleFunc("DELETE /api/v1/doctors/{id}", h.Delete)
	return httptest.NewServer(mux)
}

func TestCreateDoctor(t *testing.T) {
	srv := newDoctorServer(&fakeDoctorStore{})
	defer srv.Close()

	body := `{"name":"Dr. Rahman","email":"rahman@example.com","specialization":"Cardiology","experience":12}`
	resp, err := http.Post(srv.URL+"/api/v1/doctors", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var got model.Doctor
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !got.IsActive {
		t.Fatal("new doctor should be active")
	}
}

func TestCreateDoctor_MissingSpecialization(t *testing.T) {
	srv := newDoctorServer(&fakeDoctorStore{})
	defer srv.Close()

	body := `{"name":"Dr. Rahman","email":"rahman@example.com"}`
	resp, err := http.Post(srv.URL+"/api/v1/doctors", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeactivatedDoctor_HiddenFromListingButStillFetchable(t *testing.T) {
	store := &fakeDoctorStore{doctors: map[string]model.Doctor{
		"d1": {ID: "d1", Name: "Dr. Rahman", IsActive: true},
		"d2": {ID: "d2", Name: "Dr. Khan", IsActive: true},
	}}
	srv := newDoctorServer(store)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/doctors/d1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/doctors")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var listed []model.Doctor
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	resp.Body.Close()
	if len(listed) != 1 || listed[0].ID != "d2" {
		t.Fatalf("expected only d2 in listing, got %+v", listed)
	}

	// The row survives, so appointment views keep resolving the name.
	resp, err = http.Get(srv.URL + "/api/v1/doctors/d1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch by id: expected 200, got %d", resp.StatusCode)
	}
	var got model.Doctor
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.IsActive {
		t.Fatal("doctor should be inactive after deactivation")
	}
	if got.Name != "Dr. Rahman" {
		t.Fatalf("expected name to survive deactivation, got %q", got.Name)
	}
}

func TestOpenSlots(t *testing.T) {
	store := &fakeDoctorStore{
		doctors: map[string]model.Doctor{"d1": {ID: "d1", Name: "Dr. Rahman"}},
		booked:  []string{"09:30"},
	}
	srv := newDoctorServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/doctors/slots?doctor=d1&date=2026-09-01")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got struct {
		DoctorID string   `json:"doctorId"`
		Date     string   `json:"date"`
		Slots    []string `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []string{"09:00", "10:00", "10:30"}
	if len(got.Slots) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, got.Slots)
	}
	for i := range want {
		if got.Slots[i] != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], got.Slots[i])
		}
	}
}

func TestOpenSlots_Validation(t *testing.T) {
	store := &fakeDoctorStore{doctors: map[string]model.Doctor{}}
	srv := newDoctorServer(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/doctors/slots?date=2026-09-01")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without doctor, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/doctors/slots?doctor=d1&date=bad")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/doctors/slots?doctor=ghost&date=2026-09-01")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown doctor, got %d", resp.StatusCode)
	}
}
