package stats

import (
	"context"
	"time"
)

// Summary is the headline counter set for the dashboard landing view.
type Summary struct {
	TotalPatients         int `json:"totalPatients"`
	TotalDoctors          int `json:"totalDoctors"`
	TotalAppointments     int `json:"totalAppointments"`
	TodayAppointments     int `json:"todayAppointments"`
	PendingAppointments   int `json:"pendingAppointments"`
	CompletedAppointments int `json:"completedAppointments"`
}

// AppointmentRow is the flattened appointment shape used by dashboard
// listings, references resolved to display names.
type AppointmentRow struct {
	ID             string    `json:"id"`
	PatientName    string    `json:"patientName"`
	DoctorName     string    `json:"doctorName"`
	Specialization string    `json:"specialization"`
	Date           string    `json:"appointmentDate"`
	Time           string    `json:"appointmentTime"`
	Status         string    `json:"status"`
	IsEmergency    bool      `json:"isEmergency"`
	CreatedAt      time.Time `json:"createdAt"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MonthCount is the appointment total for one calendar month.
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type DoctorCount struct {
	DoctorID       string `json:"doctorId"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Count          int    `json:"appointmentCount"`
}

// PatientFact carries the demographic attributes aggregated into the
// gender and age breakdowns.
type PatientFact struct {
	Gender string
	Age    int
}

// DailyMetric is one row of the event-stream rollup maintained by the
// ingest pipeline.
type DailyMetric struct {
	Date      string `json:"date"`
	Booked    int    `json:"booked"`
	Completed int    `json:"completed"`
	Cancelled int    `json:"cancelled"`
}

// Source provides the raw figures the dashboard endpoints aggregate.
// Dates are formatted 2006-01-02.
type Source interface {
	Summary(ctx context.Context, today string) (Summary, error)
	AppointmentsOn(ctx context.Context, date string) ([]AppointmentRow, error)
	RecentAppointments(ctx context.Context, limit int) ([]AppointmentRow, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	MonthlyCounts(ctx context.Context, since string) ([]MonthCount, error)
	DoctorCounts(ctx context.Context) ([]DoctorCount, error)
	PatientFacts(ctx context.Context) ([]PatientFact, error)
	DailyMetrics(ctx context.Context, since string) ([]DailyMetric, error)
}
