package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AppointmentStatus is derived from the cancelled/isCompleted flags.
type AppointmentStatus string

const (
	StatusActive    AppointmentStatus = "active"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// PatientSnapshot is the copy of the patient taken when the appointment was booked.
type PatientSnapshot struct {
	ID      uint    `json:"_id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Image   string  `json:"image"`
	Gender  string  `json:"gender"`
	DOB     string  `json:"dob"`
	Address Address `json:"address"`
}

// DoctorSnapshot is the copy of the doctor taken when the appointment was booked.
type DoctorSnapshot struct {
	ID         uint    `json:"_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Image      string  `json:"image"`
	Speciality string  `json:"speciality"`
	Degree     string  `json:"degree"`
	Experience string  `json:"experience"`
	Fees       float64 `json:"fees"`
	Address    Address `json:"address"`
}

type Appointment struct {
	gorm.Model
	UserID      uint                                `json:"userId" gorm:"index;not null" example:"3"`
	DocID       uint                                `json:"docId" gorm:"index;not null" example:"1"`
	SlotDate    string                              `json:"slotDate" gorm:"type:varchar(10);not null" example:"2025-07-15"`
	SlotTime    string                              `json:"slotTime" gorm:"type:varchar(16);not null" example:"10:30 AM"`
	UserData    datatypes.JSONType[PatientSnapshot] `json:"userData"`
	DocData     datatypes.JSONType[DoctorSnapshot]  `json:"docData"`
	Amount      float64                             `json:"amount" example:"50"`
	Cancelled   bool                                `json:"cancelled" gorm:"not null;default:false"`
	IsCompleted bool                                `json:"isCompleted" gorm:"not null;default:false"`
	Payment     bool                                `json:"payment" gorm:"not null;default:false"`
}

// Status reports the lifecycle state. Cancelled wins if both flags were ever set.
func (a Appointment) Status() AppointmentStatus {
	switch {
	case a.Cancelled:
		return StatusCancelled
	case a.IsCompleted:
		return StatusCompleted
	default:
		return StatusActive
	}
}

// IsActive reports whether the appointment can still change state.
func (a Appointment) IsActive() bool {
	return a.Status() == StatusActive
}

// SnapshotPatient copies the booking-time fields of a user.
func SnapshotPatient(u User) PatientSnapshot {
	return PatientSnapshot{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Image:   u.Image,
		Gender:  u.Gender,
		DOB:     u.DOB,
		Address: u.Address.Data(),
	}
}

// SnapshotDoctor copies the booking-time fields of a doctor.
func SnapshotDoctor(d Doctor) DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Email:      d.Email,
		Image:      d.Image,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Experience: d.Experience,
		Fees:       d.Fees,
		Address:    d.Address.Data(),
	}
}
