package model

import "time"

// BookedSlot marks one (doctor, date, time) as taken. The composite unique index is
// what makes two concurrent bookings of the same slot impossible. Rows are hard-deleted
// on release so the index never collides with a stale row.
type BookedSlot struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	DoctorID      uint      `json:"doctor_id" gorm:"not null;uniqueIndex:idx_doctor_slot,priority:1"`
	SlotDate      string    `json:"slot_date" gorm:"type:varchar(10);not null;uniqueIndex:idx_doctor_slot,priority:2" example:"2025-07-15"`
	SlotTime      string    `json:"slot_time" gorm:"type:varchar(16);not null;uniqueIndex:idx_doctor_slot,priority:3" example:"10:30 AM"`
	AppointmentID uint      `json:"appointment_id" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}
