package endpoint

import (
	"errors"
	"fmt"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/middleware"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgMissingDetails = "Missing Details"
	msgInvalidSlot    = "Invalid slot date or time"
)

var (
	errInvalidPayload = errors.New("invalid payload")
	errNoDatabase     = errors.New("database not configured")
)

type appointmentRequest struct {
	AppointmentID uint `json:"appointmentId" binding:"required" example:"7"`
}

type doctorIDRequest struct {
	DocID uint `json:"docId" binding:"required" example:"1"`
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database unavailable",
			Err: errNoDatabase,
		})
		return nil, false
	}
	return db, true
}

func bindJSONOrRespond(c *gin.Context, req interface{}, msg string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func principalOrRespond(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: middleware.NotAuthorizedMessage,
			Err: errors.New("no principal on request"),
		})
		return model.Principal{}, false
	}
	return p, true
}

// respondBookingError renders rule violations as user errors and everything else
// as a server error. action completes messages such as "Cannot <action> cancelled appointment".
func respondBookingError(c *gin.Context, err error, action string) {
	msg := booking.Message(err, action)
	switch {
	case errors.Is(err, booking.ErrAppointmentNotFound), errors.Is(err, booking.ErrDoctorNotFound),
		errors.Is(err, booking.ErrPatientNotFound):
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: msg, Err: err})
	case msg != "":
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
	default:
		util.CallServerError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Failed to %s appointment", action),
			Err: err,
		})
	}
}

// openSession signs a token for p and registers its session.
func openSession(c *gin.Context, p model.Principal) (util.IssuedToken, error) {
	cfg := config.LoadConfig()
	issued, err := util.IssuePrincipalToken(p, cfg.TokenTTL)
	if err != nil {
		return util.IssuedToken{}, err
	}
	if err := util.RegisterSession(c.Request.Context(), issued.Principal, cfg.TokenTTL); err != nil {
		return util.IssuedToken{}, err
	}
	return issued, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFoundAs maps gorm's not-found onto a domain sentinel.
func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
