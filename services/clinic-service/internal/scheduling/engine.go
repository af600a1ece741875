package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinicboard/clinicboard/services/clinic-service/internal/model"
)

// Store is the entity store the engine runs against. Implementations
// must enforce slot exclusivity atomically: InsertAppointment and
// UpdateAppointment return model.ErrConflict when the write would give
// an active appointment the same (doctor, date, time) slot as another
// active one.
type Store interface {
	GetPatientRef(ctx context.Context, id string) (model.PatientRef, error)
	GetDoctorRef(ctx context.Context, id string) (model.DoctorRef, error)

	InsertAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	UpdateAppointment(ctx context.Context, a model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error

	GetAppointmentView(ctx context.Context, id string) (model.AppointmentView, error)
	ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.AppointmentView, error)
}

// Engine implements the appointment lifecycle: booking, patching,
// status transitions, deletion and listings. It holds no appointment
// state between calls; every operation reads and writes through the
// store.
type Engine struct {
	store  Store
	policy TransitionPolicy
}

func NewEngine(store Store, policy TransitionPolicy) *Engine {
	if policy == nil {
		policy = AllowAllTransitions()
	}
	return &Engine{store: store, policy: policy}
}

type BookRequest struct {
	PatientID   string
	DoctorID    string
	Date        string
	Time        string
	Notes       string
	Symptoms    string
	IsEmergency bool
}

// Book creates a new scheduled appointment. The referenced patient and
// doctor must exist; the slot must not be held by another active
// appointment.
func (e *Engine) Book(ctx context.Context, req BookRequest) (model.AppointmentView, error) {
	req.PatientID = strings.TrimSpace(req.PatientID)
	req.DoctorID = strings.TrimSpace(req.DoctorID)
	req.Time = strings.TrimSpace(req.Time)

	if req.PatientID == "" {
		return model.AppointmentView{}, fmt.Errorf("%w: patient is required", model.ErrInvalidInput)
	}
	if req.DoctorID == "" {
		return model.AppointmentView{}, fmt.Errorf("%w: doctor is required", model.ErrInvalidInput)
	}
	if err := validDate(req.Date, "appointmentDate"); err != nil {
		return model.AppointmentView{}, err
	}
	if req.Time == "" {
		return model.AppointmentView{}, fmt.Errorf("%w: appointmentTime is required", model.ErrInvalidInput)
	}

	if _, err := e.store.GetPatientRef(ctx, req.PatientID); err != nil {
		return model.AppointmentView{}, refErr("patient", req.PatientID, err)
	}
	if _, err := e.store.GetDoctorRef(ctx, req.DoctorID); err != nil {
		return model.AppointmentView{}, refErr("doctor", req.DoctorID, err)
	}

	a := model.Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		Date:        req.Date,
		Time:        req.Time,
		Status:      model.StatusScheduled,
		Notes:       req.Notes,
		Symptoms:    req.Symptoms,
		IsEmergency: req.IsEmergency,
	}
	if err := e.store.InsertAppointment(ctx, &a); err != nil {
		return model.AppointmentView{}, err
	}
	return e.store.GetAppointmentView(ctx, a.ID)
}

// Update merges the patch onto an existing appointment. Rescheduling
// (doctor, date or time) is re-validated against slot exclusivity by
// the store; there is no bypass.
func (e *Engine) Update(ctx context.Context, id string, p model.AppointmentPatch) (model.AppointmentView, error) {
	a, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return model.AppointmentView{}, refErr("appointment", id, err)
	}

	if p.DoctorID != nil {
		doctorID := strings.TrimSpace(*p.DoctorID)
		if _, err := e.store.GetDoctorRef(ctx, doctorID); err != nil {
			return model.AppointmentView{}, refErr("doctor", doctorID, err)
		}
		a.DoctorID = doctorID
	}
	if p.Date != nil {
		if err := validDate(*p.Date, "appointmentDate"); err != nil {
			return model.AppointmentView{}, err
		}
		a.Date = *p.Date
	}
	if p.Time != nil {
		t := strings.TrimSpace(*p.Time)
		if t == "" {
			return model.AppointmentView{}, fmt.Errorf("%w: appointmentTime must not be empty", model.ErrInvalidInput)
		}
		a.Time = t
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Symptoms != nil {
		a.Symptoms = *p.Symptoms
	}
	if p.FollowUpDate != nil {
		if *p.FollowUpDate != "" {
			if err := validDate(*p.FollowUpDate, "followUpDate"); err != nil {
				return model.AppointmentView{}, err
			}
		}
		a.FollowUpDate = *p.FollowUpDate
	}
	if p.IsEmergency != nil {
		a.IsEmergency = *p.IsEmergency
	}

	if err := e.store.UpdateAppointment(ctx, a); err != nil {
		return model.AppointmentView{}, err
	}
	return e.store.GetAppointmentView(ctx, a.ID)
}

// SetStatus moves an appointment to the requested status and optionally
// attaches clinical fields. The target status must be one of the five
// defined states; transition legality is decided by the configured
// policy. Reactivating an appointment into a slot that has since been
// taken fails with model.ErrConflict.
func (e *Engine) SetStatus(ctx context.Context, id string, status model.Status, upd model.StatusUpdate) (model.AppointmentView, error) {
	if !status.Valid() {
		return model.AppointmentView{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	a, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return model.AppointmentView{}, refErr("appointment", id, err)
	}
	if !e.policy.Allowed(a.Status, status) {
		return model.AppointmentView{}, fmt.Errorf("%w: transition %s -> %s not allowed", model.ErrConflict, a.Status, status)
	}

	a.Status = status
	if upd.Diagnosis != "" {
		a.Diagnosis = upd.Diagnosis
	}
	if upd.Prescription != "" {
		a.Prescription = upd.Prescription
	}
	if upd.FollowUpDate != "" {
		if err := validDate(upd.FollowUpDate, "followUpDate"); err != nil {
			return model.AppointmentView{}, err
		}
		a.FollowUpDate = upd.FollowUpDate
	}

	if err := e.store.UpdateAppointment(ctx, a); err != nil {
		return model.AppointmentView{}, err
	}
	return e.store.GetAppointmentView(ctx, a.ID)
}

// Delete hard-deletes an appointment. No compensating action is taken
// on the referenced patient or doctor.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.store.DeleteAppointment(ctx, id); err != nil {
		return refErr("appointment", id, err)
	}
	return nil
}

func (e *Engine) Get(ctx context.Context, id string) (model.AppointmentView, error) {
	v, err := e.store.GetAppointmentView(ctx, id)
	if err != nil {
		return model.AppointmentView{}, refErr("appointment", id, err)
	}
	return v, nil
}

// List returns appointments matching the filter, references resolved.
// At most one filter field may be set.
func (e *Engine) List(ctx context.Context, f model.AppointmentFilter) ([]model.AppointmentView, error) {
	set := 0
	if f.Date != "" {
		if err := validDate(f.Date, "date"); err != nil {
			return nil, err
		}
		set++
	}
	if f.DoctorID != "" {
		set++
	}
	if f.PatientID != "" {
		set++
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: at most one of date, doctor and patient may be filtered", model.ErrInvalidInput)
	}
	return e.store.ListAppointments(ctx, f)
}

func validDate(raw, field string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is required", model.ErrInvalidInput, field)
	}
	if _, err := time.Parse(model.DateLayout, raw); err != nil {
		return fmt.Errorf("%w: %s must be formatted %s", model.ErrInvalidInput, field, model.DateLayout)
	}
	return nil
}

func refErr(kind, id string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", model.ErrNotFound, kind, id)
	}
	return err
}
