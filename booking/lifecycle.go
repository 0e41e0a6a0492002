package booking

import (
	"context"
	"errors"

	"github.com/ariebrainware/physiofriend-api/model"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// authorize checks that the principal may act on the appointment. Admins may act
// on every appointment, doctors on their own, patients on the ones they booked.
func authorize(appt model.Appointment, by model.Principal) error {
	switch by.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		if appt.DocID == by.SubjectID {
			return nil
		}
	case model.RolePatient:
		if appt.UserID == by.SubjectID {
			return nil
		}
	}
	return ErrNotOwner
}

func loadAppointment(tx *gorm.DB, id uint) (model.Appointment, error) {
	var appt model.Appointment
	if err := tx.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Appointment{}, ErrAppointmentNotFound
		}
		return model.Appointment{}, err
	}
	return appt, nil
}

// Cancel moves an Active appointment to Cancelled and frees its slot.
func Cancel(ctx context.Context, db *gorm.DB, appointmentID uint, by model.Principal) (appt model.Appointment, err error) {
	ctx, span := startSpan(ctx, "booking.Cancel",
		attribute.Int64("appointment.id", int64(appointmentID)),
		attribute.String("principal.role", string(by.Role)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = loadAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if err := authorize(appt, by); err != nil {
			return err
		}
		switch appt.Status() {
		case model.StatusCancelled:
			return ErrAlreadyCancelled
		case model.StatusCompleted:
			return ErrCompletedAppointment
		}

		if err := tx.Model(&appt).Update("cancelled", true).Error; err != nil {
			return err
		}
		return release(tx, appt.DocID, appt.SlotDate, appt.SlotTime)
	})
	return appt, err
}

// Complete moves an Active appointment to Completed. The slot stays booked.
func Complete(ctx context.Context, db *gorm.DB, appointmentID uint, by model.Principal) (appt model.Appointment, err error) {
	ctx, span := startSpan(ctx, "booking.Complete",
		attribute.Int64("appointment.id", int64(appointmentID)),
		attribute.String("principal.role", string(by.Role)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = loadAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if err := authorize(appt, by); err != nil {
			return err
		}
		switch appt.Status() {
		case model.StatusCancelled:
			return ErrCancelledAppointment
		case model.StatusCompleted:
			return ErrAlreadyCompleted
		}
		return tx.Model(&appt).Update("is_completed", true).Error
	})
	return appt, err
}

// Reschedule moves an Active appointment to another slot of the same doctor.
// The new slot is reserved before the old one is released, so a failed move
// leaves the original booking intact.
func Reschedule(ctx context.Context, db *gorm.DB, appointmentID uint, by model.Principal, date, clock string) (appt model.Appointment, err error) {
	ctx, span := startSpan(ctx, "booking.Reschedule",
		attribute.Int64("appointment.id", int64(appointmentID)),
		attribute.String("slot.date", date),
		attribute.String("slot.time", clock))
	defer func() { endSpan(span, err) }()

	date, clock, err = NormalizeSlot(date, clock)
	if err != nil {
		return model.Appointment{}, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = loadAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if err := authorize(appt, by); err != nil {
			return err
		}
		switch appt.Status() {
		case model.StatusCancelled:
			return ErrCancelledAppointment
		case model.StatusCompleted:
			return ErrCompletedAppointment
		}
		if appt.SlotDate == date && appt.SlotTime == clock {
			return nil
		}

		doctor, err := loadDoctor(tx, appt.DocID)
		if err != nil {
			return err
		}
		if !doctor.Available {
			return ErrDoctorUnavailable
		}
		if err := reserve(tx, model.BookedSlot{DoctorID: doctor.ID, SlotDate: date, SlotTime: clock, AppointmentID: appt.ID}); err != nil {
			return err
		}
		if err := release(tx, appt.DocID, appt.SlotDate, appt.SlotTime); err != nil {
			return err
		}
		return tx.Model(&appt).Updates(map[string]interface{}{"slot_date": date, "slot_time": clock}).Error
	})
	return appt, err
}

// MarkPaid records a verified payment. Paying twice is a no-op.
func MarkPaid(ctx context.Context, db *gorm.DB, appointmentID uint) (appt model.Appointment, err error) {
	ctx, span := startSpan(ctx, "booking.MarkPaid", attribute.Int64("appointment.id", int64(appointmentID)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		appt, err = loadAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if appt.Cancelled {
			return ErrCancelledAppointment
		}
		if appt.Payment {
			return nil
		}
		return tx.Model(&appt).Update("payment", true).Error
	})
	return appt, err
}
