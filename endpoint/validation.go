package endpoint

import (
	"strings"
	"time"

	"github.com/ariebrainware/physiofriend-api/booking"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slotdate", validSlotDate)
		_ = v.RegisterValidation("slottime", validSlotTime)
	}
}

func validSlotDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(booking.DateLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

// validSlotTime accepts "9:00 am" as well as "09:00 AM".
func validSlotTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(fl.Field().String())))
	return err == nil
}
