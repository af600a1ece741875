package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types published by the lifecycle engine's store.
const (
	EventAppointmentBooked        = "clinic.appointment.booked.v1"
	EventAppointmentUpdated       = "clinic.appointment.updated.v1"
	EventAppointmentStatusChanged = "clinic.appointment.status_changed.v1"
	EventAppointmentDeleted       = "clinic.appointment.deleted.v1"
)
