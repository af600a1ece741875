package model

import (
	"encoding/json"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func Statuses() []Status {
	return []Status{StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow}
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the status counts toward slot exclusivity.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// DateLayout is the wire format for appointment and follow-up dates.
// Appointment times are opaque slot tokens ("10:00") and are not parsed
// by the lifecycle engine.
const DateLayout = "2006-01-02"

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type Patient struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	Age              int               `json:"age"`
	Gender           Gender            `json:"gender"`
	Address          string            `json:"address"`
	MedicalHistory   string            `json:"medicalHistory"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type Doctor struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Specialization string          `json:"specialization"`
	Experience     int             `json:"experience"`
	Qualification  string          `json:"qualification"`
	LicenseNumber  string          `json:"licenseNumber"`
	Availability   json.RawMessage `json:"availability,omitempty"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type Appointment struct {
	ID           string
	PatientID    string
	DoctorID     string
	Date         string // DateLayout
	Time         string // opaque slot token
	Status       Status
	Notes        string
	Symptoms     string
	Diagnosis    string
	Prescription string
	FollowUpDate string // DateLayout, empty when unset
	IsEmergency  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PatientRef is the display subset resolved into appointment views.
type PatientRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type DoctorRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// AppointmentView is an appointment with its references resolved for
// caller consumption. Dangling references resolve with Name "Unknown".
type AppointmentView struct {
	ID           string     `json:"id"`
	Patient      PatientRef `json:"patient"`
	Doctor       DoctorRef  `json:"doctor"`
	Date         string     `json:"appointmentDate"`
	Time         string     `json:"appointmentTime"`
	Status       Status     `json:"status"`
	Notes        string     `json:"notes"`
	Symptoms     string     `json:"symptoms"`
	Diagnosis    string     `json:"diagnosis"`
	Prescription string     `json:"prescription"`
	FollowUpDate string     `json:"followUpDate,omitempty"`
	IsEmergency  bool       `json:"isEmergency"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AppointmentFilter selects a listing. At most one of the fields may be
// set; each implies its own ordering (see Store.ListAppointments).
type AppointmentFilter struct {
	Date      string
	DoctorID  string
	PatientID string
}

// AppointmentPatch lists the fields legally editable after creation.
// Nil fields are left untouched; non-nil fields overwrite.
type AppointmentPatch struct {
	DoctorID     *string
	Date         *string
	Time         *string
	Notes        *string
	Symptoms     *string
	FollowUpDate *string
	IsEmergency  *bool
}

// StatusUpdate carries the optional clinical fields attached alongside a
// status change. Empty strings are ignored.
type StatusUpdate struct {
	Diagnosis    string
	Prescription string
	FollowUpDate string
}
