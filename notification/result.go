package notification

import "time"

// Outcome is the three-valued result of a dispatch.
type Outcome string

const (
	// OutcomeDelivered means a real channel accepted the message.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeDegraded means only the log fallback succeeded; the console must open the deep link.
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
)

// Attempt is one channel try.
type Attempt struct {
	Channel string `json:"channel" bson:"channel"`
	Success bool   `json:"success" bson:"success"`
	Error   string `json:"error,omitempty" bson:"error,omitempty"`
}

// Result is returned to the booking caller and persisted to the delivery log.
type Result struct {
	Delivered   bool      `json:"delivered" example:"false"`
	Outcome     Outcome   `json:"outcome" example:"degraded"`
	Channel     string    `json:"channel,omitempty" example:"log"`
	MessageText string    `json:"messageText"`
	DeepLinkURL string    `json:"deepLinkUrl" example:"https://wa.me/919138136007?text=Hello"`
	Recipient   string    `json:"recipient" example:"+919138136007"`
	Attempts    []Attempt `json:"attempts"`
}

// Record is one persisted dispatch.
type Record struct {
	AppointmentID uint      `json:"appointment_id" bson:"appointment_id"`
	Recipient     string    `json:"recipient" bson:"recipient"`
	Channel       string    `json:"channel" bson:"channel"`
	Outcome       Outcome   `json:"outcome" bson:"outcome"`
	Delivered     bool      `json:"delivered" bson:"delivered"`
	Message       string    `json:"message" bson:"message"`
	DeepLinkURL   string    `json:"deep_link_url" bson:"deep_link_url"`
	Attempts      []Attempt `json:"attempts" bson:"attempts"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

func newRecord(appointmentID uint, r Result) Record {
	return Record{
		AppointmentID: appointmentID,
		Recipient:     r.Recipient,
		Channel:       r.Channel,
		Outcome:       r.Outcome,
		Delivered:     r.Delivered,
		Message:       r.MessageText,
		DeepLinkURL:   r.DeepLinkURL,
		Attempts:      r.Attempts,
		CreatedAt:     time.Now().UTC(),
	}
}
