package notification

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
)

// Booking is what a notification is about.
type Booking struct {
	AppointmentID uint
	Patient       model.PatientSnapshot
	Doctor        model.DoctorSnapshot
	Date          string
	Time          string
}

// Template carries the clinic-specific parts of the message.
type Template struct {
	ClinicName string
	PortalURL  string
}

// FormatDate renders a YYYY-MM-DD slot date as "Tuesday, 15 July 2025". Unparseable
// dates are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}

func formatFees(fees float64) string {
	return strconv.FormatFloat(fees, 'f', -1, 64)
}

// FormatMessage builds the booking notification text sent to the clinic.
func (tpl Template) FormatMessage(b Booking) string {
	phone := b.Patient.Phone
	if strings.TrimSpace(phone) == "" {
		phone = "Not provided"
	}

	var sb strings.Builder
	sb.WriteString("🏥 NEW APPOINTMENT BOOKING\n")
	sb.WriteString(tpl.ClinicName + "\n\n")

	sb.WriteString("👤 PATIENT DETAILS\n")
	fmt.Fprintf(&sb, "Name: %s\nPhone: %s\nEmail: %s\n\n", b.Patient.Name, phone, b.Patient.Email)

	sb.WriteString("👨‍⚕️ DOCTOR DETAILS\n")
	fmt.Fprintf(&sb, "Dr. %s\nSpecialty: %s\n\n", strings.TrimPrefix(b.Doctor.Name, "Dr. "), b.Doctor.Speciality)

	sb.WriteString("📅 APPOINTMENT DETAILS\n")
	fmt.Fprintf(&sb, "Date: %s\nTime: %s\nFee: Rs.%s\n\n", FormatDate(b.Date), b.Time, formatFees(b.Doctor.Fees))

	sb.WriteString("⏰ REMINDER\n")
	sb.WriteString("• Please confirm this appointment\n")
	sb.WriteString("• Patient should arrive 15 minutes early\n")
	sb.WriteString("• Bring valid ID and medical records\n\n")

	fmt.Fprintf(&sb, "Portal: %s\n\n", tpl.PortalURL)
	sb.WriteString("This is an automated booking notification")
	return sb.String()
}

// Digits strips everything but 0-9 from a phone number.
func Digits(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// DeepLink builds the click-to-chat URL, e.g. https://wa.me/919138136007?text=Hi%20there.
// Spaces are encoded as %20 rather than "+" since WhatsApp does not decode "+".
func DeepLink(base, recipient, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", strings.TrimRight(base, "/"), Digits(recipient), encoded)
}
