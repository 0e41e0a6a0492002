package endpoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	msgInvalidEmail   = "Please enter a valid email"
	msgWeakPassword   = "Please enter a strong password"
	msgEmailExists    = "Email already exists"
	defaultNotifLimit = 50
	maxNotifLimit     = 500
)

type addDoctorRequest struct {
	Name       string         `json:"name" example:"Dr. Richard James"`
	Email      string         `json:"email" example:"richard@example.com"`
	Password   string         `json:"password" example:"changeme123"`
	Image      string         `json:"image" example:"https://cdn.example.com/doc1.png"`
	Speciality string         `json:"speciality" example:"General physician"`
	Degree     string         `json:"degree" example:"MBBS"`
	Experience string         `json:"experience" example:"4 Years"`
	About      string         `json:"about"`
	Fees       float64        `json:"fees" example:"50"`
	Address    *model.Address `json:"address"`
	Available  *bool          `json:"available"`
}

func validateAddDoctorRequest(req addDoctorRequest) (string, error) {
	required := []string{req.Name, req.Email, req.Password, req.Speciality, req.Degree, req.Experience, req.About}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return msgMissingDetails, errInvalidPayload
		}
	}
	if req.Fees <= 0 || req.Address == nil {
		return msgMissingDetails, errInvalidPayload
	}
	if !util.IsValidEmail(util.NormalizeEmail(req.Email)) {
		return msgInvalidEmail, errInvalidPayload
	}
	if len(req.Password) < util.MinPasswordLength {
		return msgWeakPassword, util.ErrPasswordTooShort
	}
	return "", nil
}

func emailTaken(db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	q := db.Model(&model.Doctor{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddDoctor godoc
// @Summary      Add doctor
// @Description  Create a doctor account. Missing fields, a bad email, a short password and a taken email are rejected.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      addDoctorRequest  true  "Doctor details"
// @Success      200      {object}  util.APIResponse{data=model.DoctorView}
// @Router       /api/admin/add-doctor [post]
func AddDoctor(c *gin.Context) {
	var req addDoctorRequest
	if !bindJSONOrRespond(c, &req, msgInvalidBody) {
		return
	}
	if msg, err := validateAddDoctorRequest(req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	tx := db.WithContext(c.Request.Context())

	email := util.NormalizeEmail(req.Email)
	taken, err := emailTaken(tx, email, 0)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to add doctor", Err: err})
		return
	}
	if taken {
		util.CallUserError(c, util.APIErrorParams{Msg: msgEmailExists, Err: gorm.ErrDuplicatedKey})
		return
	}

	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to add doctor", Err: err})
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	doctor := model.Doctor{
		Name:       util.NormalizeName(req.Name),
		Email:      email,
		Password:   hashed,
		Image:      req.Image,
		Speciality: req.Speciality,
		Degree:     req.Degree,
		Experience: req.Experience,
		About:      req.About,
		Fees:       req.Fees,
		Address:    datatypes.NewJSONType(*req.Address),
		Available:  available,
	}
	if err := tx.Create(&doctor).Error; err != nil {
		if isDuplicate(err) {
			util.CallUserError(c, util.APIErrorParams{Msg: msgEmailExists, Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to add doctor", Err: err})
		return
	}
	deps().DoctorCache.Invalidate()

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor Added", Data: doctor.View()})
}

func loadDoctors(db *gorm.DB, onlyAvailable bool) ([]model.Doctor, error) {
	var doctors []model.Doctor
	q := db.Preload("BookedSlots").Order("id ASC")
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	if err := q.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

// AllDoctors godoc
// @Summary      All doctors
// @Description  List every doctor with email and slots_booked. Passwords are never returned.
// @Tags         Admin
// @Produce      json
// @Security     AdminToken
// @Success      200  {object}  util.APIResponse{data=[]model.DoctorView}
// @Router       /api/admin/all-doctors [post]
func AllDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	doctors, err := loadDoctors(db.WithContext(c.Request.Context()), false)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list doctors", Err: err})
		return
	}
	views := make([]model.DoctorView, 0, len(doctors))
	for _, d := range doctors {
		views = append(views, d.View())
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors retrieved", Data: views})
}

// ListDoctors serves the public doctor listings from the directory cache.
// onlyAvailable selects the booking-page listing.
func ListDoctors(onlyAvailable bool) gin.HandlerFunc {
	key := "all"
	if onlyAvailable {
		key = "available"
	}
	return func(c *gin.Context) {
		cache := deps().DoctorCache
		if views, ok := cache.Get(key); ok {
			util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors retrieved", Data: views})
			return
		}

		db, ok := getDBOrRespond(c)
		if !ok {
			return
		}
		doctors, err := loadDoctors(db.WithContext(c.Request.Context()), onlyAvailable)
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list doctors", Err: err})
			return
		}
		views := make([]model.DoctorView, 0, len(doctors))
		for _, d := range doctors {
			views = append(views, d.PublicView())
		}
		cache.Set(key, views)
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors retrieved", Data: views})
	}
}

// AdminChangeAvailability godoc
// @Summary      Toggle doctor availability
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      doctorIDRequest  true  "Doctor"
// @Success      200      {object}  util.APIResponse
// @Router       /api/admin/change-availability [post]
func AdminChangeAvailability(c *gin.Context) {
	var req doctorIDRequest
	if !bindJSONOrRespond(c, &req, "Doctor ID is required") {
		return
	}
	toggleAvailability(c, req.DocID)
}

func toggleAvailability(c *gin.Context, doctorID uint) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	available, err := booking.ToggleAvailability(c.Request.Context(), db, doctorID)
	if err != nil {
		respondBookingError(c, err, "change")
		return
	}
	deps().DoctorCache.Invalidate()
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Availability Changed",
		Data: gin.H{"docId": doctorID, "available": available},
	})
}

// appointmentView carries the current user and doctor data in place of the booking-time snapshots.
type appointmentView struct {
	model.Appointment
	UserData model.PatientSnapshot `json:"userData"`
	DocData  model.DoctorSnapshot  `json:"docData"`
}

func rejoinAppointments(db *gorm.DB, appts []model.Appointment) ([]appointmentView, error) {
	userIDs := make([]uint, 0, len(appts))
	docIDs := make([]uint, 0, len(appts))
	for _, a := range appts {
		userIDs = append(userIDs, a.UserID)
		docIDs = append(docIDs, a.DocID)
	}

	users := map[uint]model.User{}
	doctors := map[uint]model.Doctor{}
	if len(appts) > 0 {
		var us []model.User
		if err := db.Where("id IN ?", userIDs).Find(&us).Error; err != nil {
			return nil, err
		}
		for _, u := range us {
			users[u.ID] = u
		}
		var ds []model.Doctor
		if err := db.Where("id IN ?", docIDs).Find(&ds).Error; err != nil {
			return nil, err
		}
		for _, d := range ds {
			doctors[d.ID] = d
		}
	}

	views := make([]appointmentView, 0, len(appts))
	for _, a := range appts {
		v := appointmentView{Appointment: a, UserData: a.UserData.Data(), DocData: a.DocData.Data()}
		if u, ok := users[a.UserID]; ok {
			v.UserData = model.SnapshotPatient(u)
		}
		if d, ok := doctors[a.DocID]; ok {
			v.DocData = model.SnapshotDoctor(d)
		}
		views = append(views, v)
	}
	return views, nil
}

// AdminAppointments godoc
// @Summary      All appointments
// @Description  List every appointment, newest first, with current user and doctor data
// @Tags         Admin
// @Produce      json
// @Security     AdminToken
// @Success      200  {object}  util.APIResponse{data=[]appointmentView}
// @Router       /api/admin/appointments [post]
func AdminAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	tx := db.WithContext(c.Request.Context())

	var appts []model.Appointment
	if err := tx.Order("created_at DESC, id DESC").Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}
	views, err := rejoinAppointments(tx, appts)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: views})
}

// cancelAppointment and completeAppointment are shared by the three consoles;
// booking enforces who may act on which appointment.
func cancelAppointment(c *gin.Context) {
	var req appointmentRequest
	if !bindJSONOrRespond(c, &req, "Appointment ID is required") {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appt, err := booking.Cancel(c.Request.Context(), db, req.AppointmentID, p)
	if err != nil {
		respondBookingError(c, err, "cancel")
		return
	}
	deps().DoctorCache.Invalidate()
	events.PublishAsync(deps().Publisher, events.RKAppointmentCancelled, events.NewAppointmentEvent(events.RKAppointmentCancelled, appt, p))

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment Cancelled", Data: appt})
}

func completeAppointment(c *gin.Context) {
	var req appointmentRequest
	if !bindJSONOrRespond(c, &req, "Appointment ID is required") {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	appt, err := booking.Complete(c.Request.Context(), db, req.AppointmentID, p)
	if err != nil {
		respondBookingError(c, err, "complete")
		return
	}
	events.PublishAsync(deps().Publisher, events.RKAppointmentCompleted, events.NewAppointmentEvent(events.RKAppointmentCompleted, appt, p))

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment marked as completed", Data: appt})
}

// AdminCancelAppointment godoc
// @Summary      Cancel appointment
// @Description  Cancel any active appointment and release its slot
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/admin/cancel-appointment [post]
func AdminCancelAppointment(c *gin.Context) {
	cancelAppointment(c)
}

// AdminCompleteAppointment godoc
// @Summary      Complete appointment
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/admin/complete-appointment [post]
func AdminCompleteAppointment(c *gin.Context) {
	completeAppointment(c)
}

// DeleteDoctor godoc
// @Summary      Delete doctor
// @Description  Remove a doctor with their appointments and booked slots, and revoke their sessions
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      doctorIDRequest  true  "Doctor"
// @Success      200      {object}  util.APIResponse
// @Router       /api/admin/delete-doctor [post]
func DeleteDoctor(c *gin.Context) {
	var req doctorIDRequest
	if !bindJSONOrRespond(c, &req, "Doctor ID is required") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	removed, err := booking.DeleteDoctor(c.Request.Context(), db, req.DocID)
	if err != nil {
		respondBookingError(c, err, "delete")
		return
	}
	deps().DoctorCache.Invalidate()

	principal := model.Principal{Role: model.RoleDoctor, SubjectID: req.DocID}
	if err := util.InvalidatePrincipalSessions(c.Request.Context(), principal.Key()); err != nil {
		util.Logger().Warn().Err(err).Str("principal", principal.Key()).Msg("failed to revoke sessions of deleted doctor")
	} else {
		util.LogSessionsRevoked(principal.Key(), "doctor deleted")
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctor and related appointments deleted successfully",
		Data: gin.H{"docId": req.DocID, "appointmentsRemoved": removed},
	})
}

type updateDoctorRequest struct {
	DocID      uint           `json:"docId" example:"1"`
	Name       *string        `json:"name,omitempty"`
	Email      *string        `json:"email,omitempty"`
	Password   *string        `json:"password,omitempty"`
	Image      *string        `json:"image,omitempty"`
	Speciality *string        `json:"speciality,omitempty"`
	Degree     *string        `json:"degree,omitempty"`
	Experience *string        `json:"experience,omitempty"`
	About      *string        `json:"about,omitempty"`
	Fees       *float64       `json:"fees,omitempty"`
	Address    *model.Address `json:"address,omitempty"`
	Available  *bool          `json:"available,omitempty"`
}

// changes turns the present fields into a column map. Email and password are checked here.
func (r updateDoctorRequest) changes() (map[string]interface{}, string, error) {
	updates := map[string]interface{}{}
	text := map[string]*string{
		"image":      r.Image,
		"speciality": r.Speciality,
		"degree":     r.Degree,
		"experience": r.Experience,
		"about":      r.About,
	}
	for col, v := range text {
		if v != nil {
			updates[col] = *v
		}
	}
	if r.Name != nil {
		name := util.NormalizeName(*r.Name)
		if name == "" {
			return nil, msgMissingDetails, errInvalidPayload
		}
		updates["name"] = name
	}
	if r.Email != nil {
		email := util.NormalizeEmail(*r.Email)
		if !util.IsValidEmail(email) {
			return nil, msgInvalidEmail, errInvalidPayload
		}
		updates["email"] = email
	}
	if r.Password != nil {
		hashed, err := util.HashPassword(*r.Password)
		if err != nil {
			return nil, msgWeakPassword, err
		}
		updates["password"] = hashed
	}
	if r.Fees != nil {
		if *r.Fees <= 0 {
			return nil, "Fees must be positive", errInvalidPayload
		}
		updates["fees"] = *r.Fees
	}
	if r.Address != nil {
		updates["address"] = datatypes.NewJSONType(*r.Address)
	}
	if r.Available != nil {
		updates["available"] = *r.Available
	}
	return updates, "", nil
}

// UpdateDoctor godoc
// @Summary      Update doctor
// @Description  Partially update a doctor profile. Only the fields present are changed.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     AdminToken
// @Param        request  body      updateDoctorRequest  true  "Doctor fields"
// @Success      200      {object}  util.APIResponse{data=model.DoctorView}
// @Router       /api/admin/update-doctor [post]
func UpdateDoctor(c *gin.Context) {
	var req updateDoctorRequest
	if !bindJSONOrRespond(c, &req, msgInvalidBody) {
		return
	}
	if req.DocID == 0 {
		util.CallUserError(c, util.APIErrorParams{Msg: "Doctor ID is required", Err: errInvalidPayload})
		return
	}
	updates, msg, err := req.changes()
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	doctor, msg, err := applyDoctorUpdates(db.WithContext(c.Request.Context()), req.DocID, updates)
	if err != nil {
		if msg != "" {
			util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
			return
		}
		respondBookingError(c, err, "update")
		return
	}
	deps().DoctorCache.Invalidate()

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor profile updated successfully", Data: doctor.View()})
}

// applyDoctorUpdates writes updates and returns the reloaded doctor. A non-empty
// message marks a user error.
func applyDoctorUpdates(db *gorm.DB, doctorID uint, updates map[string]interface{}) (model.Doctor, string, error) {
	var doctor model.Doctor
	if err := db.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Doctor{}, "", booking.ErrDoctorNotFound
		}
		return model.Doctor{}, "", err
	}
	if email, ok := updates["email"].(string); ok {
		taken, err := emailTaken(db, email, doctorID)
		if err != nil {
			return model.Doctor{}, "", err
		}
		if taken {
			return model.Doctor{}, msgEmailExists, gorm.ErrDuplicatedKey
		}
	}
	if len(updates) > 0 {
		if err := db.Model(&doctor).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return model.Doctor{}, msgEmailExists, err
			}
			return model.Doctor{}, "", err
		}
	}
	if err := db.Preload("BookedSlots").First(&doctor, doctorID).Error; err != nil {
		return model.Doctor{}, "", err
	}
	return doctor, "", nil
}

// AdminDashboard godoc
// @Summary      Admin dashboard
// @Tags         Admin
// @Produce      json
// @Security     AdminToken
// @Success      200  {object}  util.APIResponse{data=booking.AdminDashboard}
// @Router       /api/admin/dashboard [get]
func AdminDashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	stats, err := booking.AdminStats(c.Request.Context(), db)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Dashboard retrieved", Data: stats})
}

// AdminNotifications godoc
// @Summary      Notification delivery log
// @Description  Recent booking notification dispatches, newest first
// @Tags         Admin
// @Produce      json
// @Security     AdminToken
// @Param        limit  query     int  false  "Maximum records (default 50)"
// @Success      200    {object}  util.APIResponse{data=[]notification.Record}
// @Router       /api/admin/notifications [get]
func AdminNotifications(c *gin.Context) {
	limit := defaultNotifLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			util.CallUserError(c, util.APIErrorParams{Msg: "Invalid limit", Err: fmt.Errorf("limit %q", raw)})
			return
		}
		limit = n
	}
	if limit > maxNotifLimit {
		limit = maxNotifLimit
	}

	store := deps().Notifications
	if store == nil {
		db, ok := getDBOrRespond(c)
		if !ok {
			return
		}
		store = notification.NewGormStore(db)
	}
	records, err := store.Recent(c.Request.Context(), limit)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load notifications", Err: err})
		return
	}
	if records == nil {
		records = []notification.Record{}
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Notifications retrieved", Data: records})
}
