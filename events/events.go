package events

import (
	"encoding/json"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/google/uuid"
)

// Routing keys on the appointment topic exchange.
const (
	RKAppointmentBooked      = "appointment.booked"
	RKAppointmentCancelled   = "appointment.cancelled"
	RKAppointmentCompleted   = "appointment.completed"
	RKAppointmentRescheduled = "appointment.rescheduled"
	RKPaymentPaid            = "payment.paid"
)

// RoutingKeys is what the worker binds.
var RoutingKeys = []string{
	RKAppointmentBooked,
	RKAppointmentCancelled,
	RKAppointmentCompleted,
	RKAppointmentRescheduled,
	RKPaymentPaid,
}

// AppointmentEvent is the payload of every routing key.
type AppointmentEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	AppointmentID uint      `json:"appointment_id"`
	UserID        uint      `json:"user_id"`
	DoctorID      uint      `json:"doctor_id"`
	PatientName   string    `json:"patient_name"`
	PatientEmail  string    `json:"patient_email"`
	DoctorName    string    `json:"doctor_name"`
	Speciality    string    `json:"speciality"`
	SlotDate      string    `json:"slot_date"`
	SlotTime      string    `json:"slot_time"`
	Amount        float64   `json:"amount"`
	ActorRole     string    `json:"actor_role,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewAppointmentEvent snapshots an appointment for publishing. actor may be the zero Principal.
func NewAppointmentEvent(key string, appt model.Appointment, actor model.Principal) AppointmentEvent {
	patient := appt.UserData.Data()
	doctor := appt.DocData.Data()
	return AppointmentEvent{
		EventID:       uuid.NewString(),
		Type:          key,
		AppointmentID: appt.ID,
		UserID:        appt.UserID,
		DoctorID:      appt.DocID,
		PatientName:   patient.Name,
		PatientEmail:  patient.Email,
		DoctorName:    doctor.Name,
		Speciality:    doctor.Speciality,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
		Amount:        appt.Amount,
		ActorRole:     string(actor.Role),
		OccurredAt:    time.Now().UTC(),
	}
}

func decode(body []byte) (AppointmentEvent, error) {
	var ev AppointmentEvent
	err := json.Unmarshal(body, &ev)
	return ev, err
}
