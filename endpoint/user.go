package endpoint

import (
	"errors"
	"strings"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/middleware"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/payment"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

type registerRequest struct {
	Name     string `json:"name" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"changeme123"`
	Phone    string `json:"phone" example:"+919876543210"`
}

// RegisterUser godoc
// @Summary      Register patient
// @Description  Create a patient account and return a token
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request  body      registerRequest  true  "Patient details"
// @Success      200      {object}  util.APIResponse{data=loginResponse}
// @Router       /api/user/register [post]
func RegisterUser(c *gin.Context) {
	var req registerRequest
	if !bindJSONOrRespond(c, &req, msgInvalidBody) {
		return
	}
	name := util.NormalizeName(req.Name)
	email := util.NormalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: msgMissingDetails, Err: errInvalidPayload})
		return
	}
	if !util.IsValidEmail(email) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Enter a valid email", Err: errInvalidPayload})
		return
	}
	hashed, err := util.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, util.ErrPasswordTooShort) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Enter a strong password", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register", Err: err})
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user := model.User{Name: name, Email: email, Password: hashed, Phone: strings.TrimSpace(req.Phone)}
	if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			util.CallUserError(c, util.APIErrorParams{Msg: msgEmailExists, Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to register", Err: err})
		return
	}

	p := model.Principal{Role: model.RolePatient, SubjectID: user.ID, Email: user.Email}
	issued, err := openSession(c, p)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to open session", Err: err})
		return
	}
	util.LogSignup(issued.Principal, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Registered",
		Data: loginResponse{Token: issued.Token, Principal: issued.Principal},
	})
}

// GetProfile godoc
// @Summary      Patient profile
// @Tags         User
// @Produce      json
// @Security     UserToken
// @Success      200  {object}  util.APIResponse{data=model.User}
// @Router       /api/user/get-profile [get]
func GetProfile(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	var user model.User
	if err := db.WithContext(c.Request.Context()).First(&user, p.SubjectID).Error; err != nil {
		respondBookingError(c, notFoundAs(err, booking.ErrPatientNotFound), "load")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile retrieved", Data: user})
}

type updateProfileRequest struct {
	Name    *string        `json:"name,omitempty"`
	Phone   *string        `json:"phone,omitempty"`
	Address *model.Address `json:"address,omitempty"`
	Gender  *string        `json:"gender,omitempty" example:"Female"`
	DOB     *string        `json:"dob,omitempty" example:"1990-01-20"`
	Image   *string        `json:"image,omitempty"`
}

// UpdateProfile godoc
// @Summary      Update patient profile
// @Description  Change name, phone, address, gender, date of birth or image. Existing appointments keep their snapshot.
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      updateProfileRequest  true  "Profile fields"
// @Success      200      {object}  util.APIResponse{data=model.User}
// @Router       /api/user/update-profile [post]
func UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSONOrRespond(c, &req, msgInvalidBody) {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := util.NormalizeName(*req.Name)
		if name == "" {
			util.CallUserError(c, util.APIErrorParams{Msg: "Data Missing", Err: errInvalidPayload})
			return
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.DOB != nil {
		updates["dob"] = *req.DOB
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Address != nil {
		updates["address"] = datatypes.NewJSONType(*req.Address)
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	tx := db.WithContext(c.Request.Context())
	var user model.User
	if err := tx.First(&user, p.SubjectID).Error; err != nil {
		respondBookingError(c, notFoundAs(err, booking.ErrPatientNotFound), "update")
		return
	}
	if len(updates) > 0 {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
			return
		}
	}
	if err := tx.First(&user, p.SubjectID).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile Updated", Data: user})
}

type bookAppointmentRequest struct {
	DocID    uint   `json:"docId" binding:"required" example:"1"`
	SlotDate string `json:"slotDate" binding:"required,slotdate" example:"2025-07-15"`
	SlotTime string `json:"slotTime" binding:"required,slottime" example:"10:30 AM"`
}

// bookingResponse carries the deep link so the console can open WhatsApp when
// no channel delivered the message.
type bookingResponse struct {
	Appointment  model.Appointment   `json:"appointment"`
	Notification notification.Result `json:"notification"`
	WhatsappURL  string              `json:"whatsappUrl"`
	WhatsappSent bool                `json:"whatsappSent"`
}

// bindSlotRequestOrRespond tells a malformed slot apart from a missing field.
func bindSlotRequestOrRespond(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	msg := msgMissingDetails
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "slotdate" || fe.Tag() == "slottime" {
				msg = msgInvalidSlot
				break
			}
		}
	}
	util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
	return false
}

func currentNotifier(c *gin.Context) Notifier {
	if n := deps().Notifier; n != nil {
		return n
	}
	return notification.NewDispatcherFromConfig(config.LoadConfig(), middleware.GetDB(c), nil)
}

// BookAppointment godoc
// @Summary      Book appointment
// @Description  Reserve a doctor slot, notify the clinic and return the WhatsApp deep link
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      bookAppointmentRequest  true  "Slot"
// @Success      200      {object}  util.APIResponse{data=bookingResponse}
// @Router       /api/user/book-appointment [post]
func BookAppointment(c *gin.Context) {
	var req bookAppointmentRequest
	if !bindSlotRequestOrRespond(c, &req) {
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

	appt, err := booking.BookSlot(c.Request.Context(), db, booking.SlotRequest{
		DoctorID:  req.DocID,
		PatientID: p.SubjectID,
		Date:      req.SlotDate,
		Time:      req.SlotTime,
	})
	if err != nil {
		respondBookingError(c, err, "book")
		return
	}
	deps().DoctorCache.Invalidate()

	result := currentNotifier(c).Notify(c.Request.Context(), notification.Booking{
		AppointmentID: appt.ID,
		Patient:       appt.UserData.Data(),
		Doctor:        appt.DocData.Data(),
		Date:          appt.SlotDate,
		Time:          appt.SlotTime,
	})
	events.PublishAsync(deps().Publisher, events.RKAppointmentBooked, events.NewAppointmentEvent(events.RKAppointmentBooked, appt, p))

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Appointment Booked",
		Data: bookingResponse{
			Appointment:  appt,
			Notification: result,
			WhatsappURL:  result.DeepLinkURL,
			WhatsappSent: result.Delivered,
		},
	})
}

// ListAppointments godoc
// @Summary      Patient appointments
// @Description  The calling patient's appointments, newest first
// @Tags         User
// @Produce      json
// @Security     UserToken
// @Success      200  {object}  util.APIResponse{data=[]model.Appointment}
// @Router       /api/user/appointments [get]
func ListAppointments(c *gin.Context) {
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
		Where("user_id = ?", p.SubjectID).
		Order("created_at DESC, id DESC").
		Find(&appts).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list appointments", Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments retrieved", Data: appts})
}

// UserCancelAppointment godoc
// @Summary      Cancel appointment
// @Description  Cancel one of the calling patient's active appointments and release the slot
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/user/cancel-appointment [post]
func UserCancelAppointment(c *gin.Context) {
	cancelAppointment(c)
}

type rescheduleRequest struct {
	AppointmentID uint   `json:"appointmentId" binding:"required" example:"7"`
	SlotDate      string `json:"slotDate" binding:"required,slotdate" example:"2025-07-16"`
	SlotTime      string `json:"slotTime" binding:"required,slottime" example:"11:00 AM"`
}

// RescheduleAppointment godoc
// @Summary      Reschedule appointment
// @Description  Move an active appointment to another free slot of the same doctor
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      rescheduleRequest  true  "New slot"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/user/reschedule-appointment [post]
func RescheduleAppointment(c *gin.Context) {
	var req rescheduleRequest
	if !bindSlotRequestOrRespond(c, &req) {
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

	appt, err := booking.Reschedule(c.Request.Context(), db, req.AppointmentID, p, req.SlotDate, req.SlotTime)
	if err != nil {
		respondBookingError(c, err, "reschedule")
		return
	}
	deps().DoctorCache.Invalidate()
	events.PublishAsync(deps().Publisher, events.RKAppointmentRescheduled, events.NewAppointmentEvent(events.RKAppointmentRescheduled, appt, p))

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment Rescheduled", Data: appt})
}

func paymentServiceOrRespond(c *gin.Context) (*payment.Service, bool) {
	gw := deps().Gateway
	if gw == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Payment gateway not configured",
			Err: errors.New("razorpay credentials missing"),
		})
		return nil, false
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return nil, false
	}
	return payment.NewService(db, gw, config.LoadConfig().Currency), true
}

// PaymentRazorpay godoc
// @Summary      Create payment order
// @Description  Raise a Razorpay order for an unpaid appointment of the caller
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      appointmentRequest  true  "Appointment"
// @Success      200      {object}  util.APIResponse{data=model.PaymentOrder}
// @Router       /api/user/payment-razorpay [post]
func PaymentRazorpay(c *gin.Context) {
	var req appointmentRequest
	if !bindJSONOrRespond(c, &req, "Appointment ID is required") {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	svc, ok := paymentServiceOrRespond(c)
	if !ok {
		return
	}

	order, err := svc.CreateOrder(c.Request.Context(), req.AppointmentID, p)
	if err != nil {
		if errors.Is(err, payment.ErrAlreadyPaid) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Appointment already paid", Err: err})
			return
		}
		respondBookingError(c, err, "pay")
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Order created", Data: order})
}

type verifyPaymentRequest struct {
	OrderID string `json:"razorpay_order_id" binding:"required" example:"order_9A33XWu170gUtm"`
}

// VerifyRazorpay godoc
// @Summary      Verify payment
// @Description  Check the order with Razorpay and mark the appointment paid
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     UserToken
// @Param        request  body      verifyPaymentRequest  true  "Order"
// @Success      200      {object}  util.APIResponse{data=model.Appointment}
// @Router       /api/user/verify-razorpay [post]
func VerifyRazorpay(c *gin.Context) {
	var req verifyPaymentRequest
	if !bindJSONOrRespond(c, &req, "Order ID is required") {
		return
	}
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	svc, ok := paymentServiceOrRespond(c)
	if !ok {
		return
	}

	appt, err := svc.Verify(c.Request.Context(), req.OrderID, p)
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrNotPaid):
		util.CallUserError(c, util.APIErrorParams{Msg: "Payment Failed", Err: err})
		return
	case errors.Is(err, payment.ErrOrderNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Payment order not found", Err: err})
		return
	default:
		respondBookingError(c, err, "pay")
		return
	}
	events.PublishAsync(deps().Publisher, events.RKPaymentPaid, events.NewAppointmentEvent(events.RKPaymentPaid, appt, p))

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment Successful", Data: appt})
}
