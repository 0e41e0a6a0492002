package model

import "gorm.io/gorm"

const (
	PaymentOrderCreated = "created"
	PaymentOrderPaid    = "paid"
)

// PaymentOrder tracks a gateway order raised for an appointment.
type PaymentOrder struct {
	gorm.Model
	OrderID       string `json:"order_id" gorm:"type:varchar(64);uniqueIndex;not null" example:"order_9A33XWu170gUtm"`
	AppointmentID uint   `json:"appointment_id" gorm:"index;not null"`
	UserID        uint   `json:"user_id" gorm:"index"`
	Amount        int64  `json:"amount" example:"5000"`
	Currency      string `json:"currency" gorm:"type:varchar(8)" example:"INR"`
	Receipt       string `json:"receipt" gorm:"type:varchar(64)"`
	Status        string `json:"status" gorm:"type:varchar(16);index" example:"created"`
}
