package model

import (
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Address is the two-line postal address used by doctors and patients.
type Address struct {
	Line1 string `json:"line1" example:"17th Cross, Richmond"`
	Line2 string `json:"line2" example:"Circle, Ring Road, London"`
}

type Doctor struct {
	gorm.Model
	Name        string                      `json:"name" gorm:"type:varchar(255);not null" example:"Dr. Richard James"`
	Email       string                      `json:"email" gorm:"type:varchar(191);uniqueIndex;not null" example:"richard@example.com"`
	Password    string                      `json:"-" gorm:"type:varchar(255);not null"`
	Image       string                      `json:"image" gorm:"type:varchar(512)"`
	Speciality  string                      `json:"speciality" gorm:"type:varchar(255);index" example:"General physician"`
	Degree      string                      `json:"degree" gorm:"type:varchar(255)" example:"MBBS"`
	Experience  string                      `json:"experience" gorm:"type:varchar(64)" example:"4 Years"`
	About       string                      `json:"about" gorm:"type:text"`
	Fees        float64                     `json:"fees" gorm:"not null" example:"50"`
	Address     datatypes.JSONType[Address] `json:"address"`
	Available   bool                        `json:"available" gorm:"not null" example:"true"`
	BookedSlots []BookedSlot                `json:"-" gorm:"foreignKey:DoctorID"`
}

// DoctorView is the wire representation of a doctor including the slot map.
type DoctorView struct {
	Doctor
	Email       string              `json:"email,omitempty"`
	SlotsBooked map[string][]string `json:"slots_booked"`
}

// View renders the doctor with slots_booked built from the preloaded BookedSlots.
func (d Doctor) View() DoctorView {
	return DoctorView{
		Doctor:      d,
		Email:       d.Email,
		SlotsBooked: GroupSlots(d.BookedSlots),
	}
}

// PublicView hides the email for the unauthenticated doctor listings.
func (d Doctor) PublicView() DoctorView {
	v := d.View()
	v.Email = ""
	return v
}

// GroupSlots builds the date -> times map. Times keep booking order within a date.
func GroupSlots(slots []BookedSlot) map[string][]string {
	ordered := make([]BookedSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	out := make(map[string][]string)
	for _, s := range ordered {
		out[s.SlotDate] = append(out[s.SlotDate], s.SlotTime)
	}
	return out
}
