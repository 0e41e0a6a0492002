package booking

import (
	"context"

	"github.com/ariebrainware/physiofriend-api/model"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ToggleAvailability flips the doctor's available flag and returns the new value.
func ToggleAvailability(ctx context.Context, db *gorm.DB, doctorID uint) (available bool, err error) {
	ctx, span := startSpan(ctx, "booking.ToggleAvailability", attribute.Int64("doctor.id", int64(doctorID)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doctor, err := loadDoctor(tx, doctorID)
		if err != nil {
			return err
		}
		available = !doctor.Available
		return tx.Model(&doctor).Update("available", available).Error
	})
	return available, err
}

// DeleteDoctor removes the doctor together with every appointment and booked slot
// that references them. It returns how many appointments were removed.
func DeleteDoctor(ctx context.Context, db *gorm.DB, doctorID uint) (removed int64, err error) {
	ctx, span := startSpan(ctx, "booking.DeleteDoctor", attribute.Int64("doctor.id", int64(doctorID)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doctor, err := loadDoctor(tx, doctorID)
		if err != nil {
			return err
		}
		res := tx.Unscoped().Where("doc_id = ?", doctor.ID).Delete(&model.Appointment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&model.BookedSlot{}).Error; err != nil {
			return err
		}
		// Hard delete so the email can be registered again.
		return tx.Unscoped().Delete(&doctor).Error
	})
	return removed, err
}
