package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DateLayout = "2006-01-02"
	// TimeLayout is how times are stored: zero padded so "9:00 am" and "09:00 AM" are the same slot.
	TimeLayout = "03:04 PM"
)

var tracer = otel.Tracer("github.com/ariebrainware/physiofriend-api/booking")

// SlotRequest asks for one doctor slot on behalf of a patient.
type SlotRequest struct {
	DoctorID  uint
	PatientID uint
	Date      string
	Time      string
}

// NormalizeSlot validates a date (YYYY-MM-DD) and a 12-hour time and returns their
// canonical stored forms.
func NormalizeSlot(date, clock string) (string, string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", "", ErrInvalidSlot
	}
	t, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return "", "", ErrInvalidSlot
	}
	return d.Format(DateLayout), t.Format(TimeLayout), nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// BookSlot reserves the slot and creates an Active appointment in one transaction.
// The booked_slots unique index decides races: the loser gets ErrSlotNotAvailable.
func BookSlot(ctx context.Context, db *gorm.DB, req SlotRequest) (appt model.Appointment, err error) {
	ctx, span := startSpan(ctx, "booking.BookSlot",
		attribute.Int64("doctor.id", int64(req.DoctorID)),
		attribute.String("slot.date", req.Date),
		attribute.String("slot.time", req.Time))
	defer func() { endSpan(span, err) }()

	date, clock, err := NormalizeSlot(req.Date, req.Time)
	if err != nil {
		return model.Appointment{}, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doctor, err := loadDoctor(tx, req.DoctorID)
		if err != nil {
			return err
		}
		if !doctor.Available {
			return ErrDoctorUnavailable
		}

		var patient model.User
		if err := tx.First(&patient, req.PatientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPatientNotFound
			}
			return err
		}

		appt = model.Appointment{
			UserID:   patient.ID,
			DocID:    doctor.ID,
			SlotDate: date,
			SlotTime: clock,
			UserData: datatypes.NewJSONType(model.SnapshotPatient(patient)),
			DocData:  datatypes.NewJSONType(model.SnapshotDoctor(doctor)),
			Amount:   doctor.Fees,
		}
		if err := tx.Create(&appt).Error; err != nil {
			return err
		}
		return reserve(tx, model.BookedSlot{DoctorID: doctor.ID, SlotDate: date, SlotTime: clock, AppointmentID: appt.ID})
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

// ReleaseSlot frees a slot. Releasing a slot that is not booked is a no-op.
func ReleaseSlot(ctx context.Context, db *gorm.DB, doctorID uint, date, clock string) error {
	return release(db.WithContext(ctx), doctorID, date, clock)
}

// SlotsBooked returns the doctor's date -> times map.
func SlotsBooked(ctx context.Context, db *gorm.DB, doctorID uint) (map[string][]string, error) {
	var slots []model.BookedSlot
	if err := db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order("id").Find(&slots).Error; err != nil {
		return nil, err
	}
	return model.GroupSlots(slots), nil
}

func loadDoctor(tx *gorm.DB, id uint) (model.Doctor, error) {
	var doctor model.Doctor
	if err := tx.First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Doctor{}, ErrDoctorNotFound
		}
		return model.Doctor{}, err
	}
	return doctor, nil
}

func reserve(tx *gorm.DB, slot model.BookedSlot) error {
	var taken int64
	if err := tx.Model(&model.BookedSlot{}).
		Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", slot.DoctorID, slot.SlotDate, slot.SlotTime).
		Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrSlotNotAvailable
	}
	if err := tx.Create(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSlotNotAvailable
		}
		return err
	}
	return nil
}

func release(tx *gorm.DB, doctorID uint, date, clock string) error {
	return tx.Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", doctorID, date, clock).
		Delete(&model.BookedSlot{}).Error
}
