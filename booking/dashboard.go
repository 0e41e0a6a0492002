package booking

import (
	"context"

	"github.com/ariebrainware/physiofriend-api/model"
	"gorm.io/gorm"
)

// LatestLimit is how many recent appointments a dashboard shows.
const LatestLimit = 5

type DoctorDashboard struct {
	Earnings           float64             `json:"earnings" example:"150"`
	Appointments       int64               `json:"appointments" example:"4"`
	Patients           int64               `json:"patients" example:"3"`
	LatestAppointments []model.Appointment `json:"latestAppointments"`
}

type AdminDashboard struct {
	Doctors            int64               `json:"doctors" example:"10"`
	Appointments       int64               `json:"appointments" example:"42"`
	Patients           int64               `json:"patients" example:"30"`
	LatestAppointments []model.Appointment `json:"latestAppointments"`
}

// DoctorStats aggregates one doctor's appointments. Earnings count appointments
// that were either completed or paid.
func DoctorStats(ctx context.Context, db *gorm.DB, doctorID uint) (DoctorDashboard, error) {
	db = db.WithContext(ctx)
	var dash DoctorDashboard

	scoped := func() *gorm.DB {
		return db.Model(&model.Appointment{}).Where("doc_id = ?", doctorID)
	}
	if err := scoped().Where("is_completed = ? OR payment = ?", true, true).
		Select("COALESCE(SUM(amount), 0)").Scan(&dash.Earnings).Error; err != nil {
		return DoctorDashboard{}, err
	}
	if err := scoped().Count(&dash.Appointments).Error; err != nil {
		return DoctorDashboard{}, err
	}
	if err := scoped().Distinct("user_id").Count(&dash.Patients).Error; err != nil {
		return DoctorDashboard{}, err
	}
	if err := scoped().Order("id desc").Limit(LatestLimit).Find(&dash.LatestAppointments).Error; err != nil {
		return DoctorDashboard{}, err
	}
	return dash, nil
}

// AdminStats aggregates the whole clinic.
func AdminStats(ctx context.Context, db *gorm.DB) (AdminDashboard, error) {
	db = db.WithContext(ctx)
	var dash AdminDashboard

	if err := db.Model(&model.Doctor{}).Count(&dash.Doctors).Error; err != nil {
		return AdminDashboard{}, err
	}
	if err := db.Model(&model.Appointment{}).Count(&dash.Appointments).Error; err != nil {
		return AdminDashboard{}, err
	}
	if err := db.Model(&model.User{}).Count(&dash.Patients).Error; err != nil {
		return AdminDashboard{}, err
	}
	if err := db.Order("id desc").Limit(LatestLimit).Find(&dash.LatestAppointments).Error; err != nil {
		return AdminDashboard{}, err
	}
	return dash, nil
}
