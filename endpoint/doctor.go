package endpoint

import (
	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// DoctorAppointments godoc
// @Summary      Doctor appointments
// @Description  Appointments booked with the calling doctor, newest first
// @Tags         Doctor
// @Produce      json
// @Security     DoctorToken
// @Success      200  {object}  util.APIResponse{data=[]model.Appointment}
// @Router       /api/doctor/appointments [get]
func DoctorAppointments(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var appts []model.Appointment
	if err := db.WithContext(c.Request.Context()).
		Where("doc_id = ?", p.SubjectID).
		Order("created_at DESC, id DESC").
		Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// DoctorCancelAppointment godoc
// @Summary      Cancel appointment
// @Description  Cancel one of the calling doctor's active appointments
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     DoctorToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/doctor/cancel-appointment [post]
func DoctorCancelAppointment(c *gin.Context) {
	cancelAppointment(c)
}

// DoctorCompleteAppointment godoc
// @Summary      Complete appointment
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     DoctorToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/doctor/complete-appointment [post]
func DoctorCompleteAppointment(c *gin.Context) {
	completeAppointment(c)
}

// DoctorDashboard godoc
// @Summary      Doctor dashboard
// @Description  Earnings, appointment and patient counts and the latest appointments
// @Tags         Doctor
// @Produce      json
// @Security     DoctorToken
// @Success      200  {object}  util.APIResponse{data=booking.DoctorDashboard}
// @Router       /api/doctor/dashboard [get]
func DoctorDashboard(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	stats, err := booking.DoctorStats(c.Request.Context(), db, p.SubjectID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Dashboard retrieved", Data: stats})
}

// DoctorProfile godoc
// @Summary      Doctor profile
// @Tags         Doctor
// @Produce      json
// @Security     DoctorToken
// @Success      200  {object}  util.APIResponse{data=model.DoctorView}
// @Router       /api/doctor/profile [get]
func DoctorProfile(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctor model.Doctor
	if err := db.WithContext(c.Request.Context()).Preload("BookedSlots").First(&doctor, p.SubjectID).Error; err != nil {
		respondBookingError(c, notFoundAs(err, booking.ErrDoctorNotFound), "load")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: doctor.View()})
}

type doctorProfileRequest struct {
	Fees      *float64       `json:"fees,omitempty" example:"60"`
	Address   *model.Address `json:"address,omitempty"`
	Available *bool          `json:"available,omitempty"`
	About     *string        `json:"about,omitempty"`
}

// DoctorUpdateProfile godoc
// @Summary      Update doctor profile
// @Description  A doctor may change fees, address, availability and about
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Security     DoctorToken
// @Param        request  body      doctorProfileRequest  true  "Profile fields"
// @Success      200      {object}  util.APIResponse{data=model.DoctorView}
// @Router       /api/doctor/update-profile [post]
func DoctorUpdateProfile(c *gin.Context) {
	var req doctorProfileRequest
	if !bindJSONOrRespond(c, &req, msgInvalidBody) {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Fees != nil {
		if *req.Fees <= 0 {
			util.CallUserError(c, util.APIErrorParams{Msg: "Fees must be positive", Err: errInvalidPayload})
			return
		}
		updates["fees"] = *req.Fees
	}
	if req.Address != nil {
		updates["address"] = datatypes.NewJSONType(*req.Address)
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if req.About != nil {
		updates["about"] = *req.About
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctor, _, err := applyDoctorUpdates(db.WithContext(c.Request.Context()), p.SubjectID, updates)
	if err != nil {
		respondBookingError(c, err, "update")
		return
	}
	deps().DoctorCache.Invalidate()

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile Updated", Data: doctor.View()})
}

// DoctorChangeAvailability godoc
// @Summary      Toggle own availability
// @Tags         Doctor
// @Produce      json
// @Security     DoctorToken
// @Success      200  {object}  util.APIResponse
// @Router       /api/doctor/change-availability [post]
func DoctorChangeAvailability(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	toggleAvailability(c, p.SubjectID)
}
