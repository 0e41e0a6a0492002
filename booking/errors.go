package booking

import "errors"

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDoctorUnavailable   = errors.New("doctor unavailable")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrSlotNotAvailable    = errors.New("slot not available")
	ErrInvalidSlot         = errors.New("invalid slot date or time")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotOwner            = errors.New("appointment belongs to another principal")
	// ErrCancelledAppointment guards complete, reschedule and pay on a cancelled appointment.
	ErrCancelledAppointment = errors.New("appointment is cancelled")
	// ErrCompletedAppointment guards cancel and reschedule on a completed appointment.
	ErrCompletedAppointment = errors.New("appointment is completed")
	ErrAlreadyCancelled     = errors.New("appointment already cancelled")
	ErrAlreadyCompleted     = errors.New("appointment already completed")
)

var messages = []struct {
	err error
	msg string
}{
	{ErrDoctorNotFound, "Doctor not found"},
	{ErrDoctorUnavailable, "Doctor unavailable"},
	{ErrPatientNotFound, "User not found"},
	{ErrSlotNotAvailable, "Slot not available"},
	{ErrInvalidSlot, "Invalid slot date or time"},
	{ErrAppointmentNotFound, "Appointment not found"},
	{ErrNotOwner, "Unauthorized action"},
	{ErrAlreadyCancelled, "Appointment already cancelled"},
	{ErrAlreadyCompleted, "Appointment already completed"},
}

// Message returns the console-facing text for a booking error, or "" if err is not one.
// The two illegal-transition errors read differently depending on what was attempted,
// so callers pass the action ("cancel", "complete", "reschedule", "pay").
func Message(err error, action string) string {
	switch {
	case errors.Is(err, ErrCancelledAppointment):
		return "Cannot " + action + " cancelled appointment"
	case errors.Is(err, ErrCompletedAppointment):
		return "Cannot " + action + " completed appointment"
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return ""
}

// IsBusinessError reports whether err is one of the booking rule violations as
// opposed to a storage failure.
func IsBusinessError(err error) bool {
	return Message(err, "change") != ""
}
