package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Mailer sends a plain text mail, e.g. *notification.EmailChannel.
type Mailer interface {
	SendTo(ctx context.Context, to, subject, body string) error
}

// ConfirmationHandler tells the patient about changes to their appointment. It
// mails when SMTP is configured and otherwise writes the text to the log.
type ConfirmationHandler struct {
	mailer Mailer
	logger *zerolog.Logger
	clinic string
}

func NewConfirmationHandler(mailer Mailer, logger *zerolog.Logger, clinic string) *ConfirmationHandler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ConfirmationHandler{mailer: mailer, logger: logger, clinic: clinic}
}

// ConfirmationText returns the subject and body for a routing key. ok is false
// for keys that have no patient-facing text.
func ConfirmationText(clinic, key string, ev AppointmentEvent) (subject, body string, ok bool) {
	when := fmt.Sprintf("%s at %s", ev.SlotDate, ev.SlotTime)
	switch key {
	case RKAppointmentBooked:
		subject = "Appointment booked"
		body = fmt.Sprintf("Hi %s, your appointment with %s on %s is booked.", ev.PatientName, ev.DoctorName, when)
	case RKAppointmentCancelled:
		subject = "Appointment cancelled"
		body = fmt.Sprintf("Hi %s, your appointment with %s on %s was cancelled.", ev.PatientName, ev.DoctorName, when)
	case RKAppointmentCompleted:
		subject = "Thank you for your visit"
		body = fmt.Sprintf("Hi %s, your appointment with %s on %s is marked as completed.", ev.PatientName, ev.DoctorName, when)
	case RKAppointmentRescheduled:
		subject = "Appointment rescheduled"
		body = fmt.Sprintf("Hi %s, your appointment with %s moved to %s.", ev.PatientName, ev.DoctorName, when)
	case RKPaymentPaid:
		subject = "Payment received"
		body = fmt.Sprintf("Hi %s, we received your payment of Rs.%g for the appointment on %s.", ev.PatientName, ev.Amount, when)
	default:
		return "", "", false
	}
	return fmt.Sprintf("%s: %s", clinic, subject), body + "\n\n" + clinic, true
}

func (h *ConfirmationHandler) Handle(ctx context.Context, key string, ev AppointmentEvent) error {
	subject, body, ok := ConfirmationText(h.clinic, key, ev)
	if !ok {
		h.logger.Debug().Str("routing_key", key).Msg("skip unknown key")
		return nil
	}

	if h.mailer != nil && ev.PatientEmail != "" {
		err := h.mailer.SendTo(ctx, ev.PatientEmail, subject, body)
		if err == nil {
			return nil
		}
		h.logger.Warn().Err(err).Str("to", ev.PatientEmail).Msg("confirmation mail failed, logging instead")
	}

	h.logger.Info().
		Str("routing_key", key).
		Uint("appointment_id", ev.AppointmentID).
		Str("to", ev.PatientEmail).
		Str("subject", subject).
		Str("body", body).
		Msg("patient confirmation")
	return nil
}
